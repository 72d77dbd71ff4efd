package avif

import (
	"errors"
	"sync"
)

// ErrNotAccelerated is returned by a ReformatAccelerator that does not
// handle a particular conversion. The built-in converters take over
// silently.
var ErrNotAccelerated = errors.New("avif: conversion not accelerated")

// ReformatAccelerator is an optional bulk converter, typically backed by
// SIMD code, that is tried before the built-in converters.
//
// Both methods receive descriptors that already passed validation and
// buffer checks. They report whether they also wrote the destination
// alpha. Any error, ErrNotAccelerated or otherwise, makes the caller redo
// the whole conversion with the built-in path; other errors are logged at
// warn level.
//
// Accelerators convert straight (non premultiplied) values. Premultiply
// reconciliation of the YUV to RGB direction is always done afterwards by
// the package, and RGB to YUV conversions that need it are never
// delegated. ImageToRGB is not offered conversions that request
// ChromaUpsamplingBestQuality, and neither method sees descriptors with
// AvoidAccelerator set.
type ReformatAccelerator interface {
	// Name identifies the accelerator in log records.
	Name() string

	ImageToRGB(image *Image, rgb *RGBImage) (alphaWritten bool, err error)
	ImageFromRGB(rgb *RGBImage, image *Image) (alphaWritten bool, err error)
}

var (
	accelMu sync.RWMutex
	accel   ReformatAccelerator
)

// RegisterAccelerator installs a as the accelerator, replacing any
// previous one. Packages providing accelerators usually register from
// init:
//
//	func init() {
//	    avif.RegisterAccelerator(newNEONConverter())
//	}
func RegisterAccelerator(a ReformatAccelerator) error {
	if a == nil {
		return errors.New("avif: accelerator must not be nil")
	}
	accelMu.Lock()
	accel = a
	accelMu.Unlock()
	propagateLogger(a, Logger())
	return nil
}

// UnregisterAccelerator removes the registered accelerator, if any.
func UnregisterAccelerator() {
	accelMu.Lock()
	accel = nil
	accelMu.Unlock()
}

// Accelerator returns the registered accelerator, or nil.
func Accelerator() ReformatAccelerator {
	accelMu.RLock()
	a := accel
	accelMu.RUnlock()
	return a
}
