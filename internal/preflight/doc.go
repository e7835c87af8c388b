// Package preflight provides readiness checks for the directories and
// external tools an export depends on.
//
// These checks run in two contexts:
//   - `orxport export` calls RunAll before loading the manifest. A failed
//     directory check aborts the run before any work is scheduled.
//   - `orxport status` uses RunAll and CheckSystemDeps to display tool and
//     directory health.
//
// Tool requirements follow the configured formats and renderer, so a tool
// that no requested format needs is never reported.
package preflight
