// Package filter selects the emoji an export run operates on.
//
// Rules take the form key=v1,v2 and match an emoji when its attribute holds
// one of the listed values. The value `*` matches any present attribute and
// `!` matches an absent or undefined one. A --where expression narrows the
// selection further.
package filter
