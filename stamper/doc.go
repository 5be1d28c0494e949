// Package stamper loads workspace status variables and expands {VAR}
// placeholders in strings.
//
// Stamp variables come from "KEY VALUE" status files (one pair per
// line) or from the process environment. Pin file fields use them to
// avoid hardcoding values that CI stamps at build time, for example a
// reference of "{DEP_GIT_TAG}".
package stamper
