package domain

import "time"

// RawTimestamp is the closed set of shapes a backend uses for "last updated".
type RawTimestamp interface{ rawTimestamp() }

type NativeDate struct{ Time time.Time }

type EpochMillis int64

type DateString string

type Absent struct{}

func (NativeDate) rawTimestamp()  {}
func (EpochMillis) rawTimestamp() {}
func (DateString) rawTimestamp()  {}
func (Absent) rawTimestamp()      {}
