// Package hardware defines the fallible primitive operations the
// controller issues against the scanning instrument, and provides two
// implementations of that contract: an in-memory simulator and the
// native DCAM binding stub. The backend is selected once at
// construction; everything above this package is backend-agnostic.
package hardware
