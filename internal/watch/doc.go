/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package watch slices a night routine into duty slots and divides those
// slots between the squads of a platoon.
//
// Everything here is a pure function of its inputs. Slots are generated once
// per night and shared read-only by every squad's allocation.
package watch
