// Package catalog writes metadata about compiled emoji: a JSON or YAML
// replica of every record and the category/root index used by the website.
package catalog
