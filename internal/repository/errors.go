// Package repository contains the MySQL data access layer. This file
// defines sentinel errors shared across repositories so that handlers
// can map failure cases to distinct HTTP responses without inspecting
// SQL errors themselves.
package repository

import "errors"

// ErrShowNotFound indicates that no show with the requested ID exists.
// Handlers translate it into a 404 response.
var ErrShowNotFound = errors.New("show not found")

// ErrBookingNotFound indicates that a booking does not exist or does
// not belong to the requesting user. The two cases are deliberately
// indistinguishable to callers.
var ErrBookingNotFound = errors.New("booking not found")

// ErrEmailExists is returned on registration when the email address is
// already taken.
var ErrEmailExists = errors.New("email already exists")

// ErrSeatConflict is returned by BookingRepo.Create when, inside the
// insert transaction, one of the requested seats turns out to be held
// by another pending or confirmed booking. This is the authoritative
// conflict check; the advisory pre-check in the booking flow only
// narrows the race window.
var ErrSeatConflict = errors.New("seat already booked")

// ErrInvalidTransition is returned by BookingRepo.UpdateStatus when
// the requested status change is not allowed by the booking lifecycle
// (for example confirming a cancelled booking).
var ErrInvalidTransition = errors.New("invalid status transition")
