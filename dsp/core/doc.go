// Package core holds small numeric and configuration helpers shared by the
// delay, modulation and analysis packages.
package core
