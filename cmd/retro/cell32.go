//go:build !retro64

package main

// cell is the machine word; build with -tags retro64 for 64-bit cells.
type cell = int32
