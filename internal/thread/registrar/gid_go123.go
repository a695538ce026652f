// Copyright 2025 The guestthread Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build go1.23 && !go1.25 && (amd64 || arm64)

// goid offset for Go 1.23 and 1.24.
//
// On these toolchains the gobuf struct is 56 bytes (7 pointers: sp, pc,
// g, ctxt, ret, lr, bp), which places goid at offset 160:
//
//	Field          Size    Offset
//	-----          ----    ------
//	stack          16      0
//	stackguard0    8       16
//	stackguard1    8       24
//	_panic         8       32
//	_defer         8       40
//	m              8       48
//	sched (gobuf)  56      56
//	syscallsp      8       112
//	syscallpc      8       120
//	syscallbp      8       128
//	stktopsp       8       136
//	param          8       144
//	atomicstatus   4       152
//	stackLock      4       156
//	goid           8       160 <- read here

package registrar

// gidOffset is the byte offset of goid within runtime.g on Go 1.23 and
// 1.24, amd64 and arm64.
const gidOffset = 160
