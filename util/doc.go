/*
Package util provides general-purpose tasks for common operations in
the contact-registry-server package.

Operations include helpers to deal with timing, string matching, regular
expression capture groups, and local address discovery.
*/
package util
