// Package utils provides conversions for loosely typed JSON values, as
// returned by the NetBox API and written by the table export.
package utils
