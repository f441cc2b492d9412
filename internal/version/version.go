// Package version provides the gh-fwbump version constant.
package version

// Version is the current gh-fwbump version.
const Version = "0.3.0"
