//go:build retro64

package main

type cell = int64
