// Package svg performs the text-level SVG edits of an export: palette color
// translation, license metadata insertion and viewBox size detection.
//
// Edits work on the raw document bytes so everything outside the edited
// spans is preserved exactly.
package svg
