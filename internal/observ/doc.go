// Package observ times the kernel's boot phases.
package observ
