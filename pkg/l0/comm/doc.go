// Package comm provides L0 protocol support.
package comm

// L0 protocol is communicated between the appliance firmware and its
// host controller over a half-duplex serial line.
//
// Framing: a frame ends with '\n'. Inside a frame '\\' 'n' stands for a
// literal '\n' and '\\' followed by any other byte stands for that byte.
// There is no checksum; the host is expected to resend on a missing or
// garbled reply.
//
// Commands (host to device), first byte is the tag:
//
//	'P'                  ping
//	'R'                  reset
//	'D' [1024 bytes]     display bitmap
//	'L' [0 | 1]          LED
//	'B' [(u16 LE freq, u8 length, u8 volume)*]  beep
//
// Events (device to host), sent as the reply to every frame:
//
//	'p'                  pong, nothing pending
//	'b' [0 | 1]          button released/pressed
//	'r' [4-10 bytes]     RFID UID read
//
// Producer: host controller (commands), firmware (events)
// Consumer: firmware (commands), host controller (events)
