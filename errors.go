package provision

import "errors"

// Sentinel errors for provisioning operations.
// Use errors.Is() to check for specific error conditions.
var (
	// ErrInvalidRef indicates an artifact reference that could not be parsed.
	ErrInvalidRef = errors.New("provision: invalid artifact reference")

	// ErrPrecondition indicates the environment lacks a required capability
	// (converter binary missing or below the minimum version). Fatal; the
	// run is not retryable until the environment is fixed.
	ErrPrecondition = errors.New("provision: precondition not met")

	// ErrTransfer indicates a network retrieval or archive extraction
	// failure. The staging area is cleaned up, so re-running is safe.
	ErrTransfer = errors.New("provision: transfer failed")

	// ErrConversion indicates the converter toolchain failed. The staging
	// area is cleaned up, so re-running is safe.
	ErrConversion = errors.New("provision: conversion failed")

	// ErrCommit indicates the final rename of the staging area onto the
	// destination failed. The staging area is retained for manual recovery.
	ErrCommit = errors.New("provision: commit failed")

	// ErrStorage indicates a filesystem operation failed.
	ErrStorage = errors.New("provision: storage error")

	// ErrAlreadyInstalled indicates the destination directory already
	// exists. Returned by Install; callers treat it as success.
	ErrAlreadyInstalled = errors.New("provision: artifact already installed")

	// ErrNotInstalled indicates the artifact is not installed locally.
	ErrNotInstalled = errors.New("provision: artifact not installed")
)
