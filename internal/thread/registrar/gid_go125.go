// Copyright 2025 The guestthread Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build go1.25 && !go1.26 && (amd64 || arm64)

// goid offset for Go 1.25.
//
// Go 1.25 dropped the ret slot from gobuf, shrinking it to 48 bytes
// (6 pointers: sp, pc, g, ctxt, lr, bp) and moving goid to offset 152:
//
//	Field          Size    Offset
//	-----          ----    ------
//	stack          16      0
//	stackguard0    8       16
//	stackguard1    8       24
//	_panic         8       32
//	_defer         8       40
//	m              8       48
//	sched (gobuf)  48      56
//	syscallsp      8       104
//	syscallpc      8       112
//	syscallbp      8       120
//	stktopsp       8       128
//	param          8       136
//	atomicstatus   4       144
//	stackLock      4       148
//	goid           8       152 <- read here

package registrar

// gidOffset is the byte offset of goid within runtime.g on Go 1.25,
// amd64 and arm64.
const gidOffset = 152
