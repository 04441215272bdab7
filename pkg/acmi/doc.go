// Package acmi reads and writes the line-oriented ACMI flight recording format
// (FileType=text/acmi/tacview, version 2.x).
//
// A recording is a header followed by one record per logical line:
//
//	FileType=text/acmi/tacview
//	FileVersion=2.2
//	0,ReferenceTime=2011-06-02T05:00:00Z
//	0,Event=Message|3000102|Hello
//	#47.13
//	3000102,T=41.6251307|41.5910417|2000|||90,Name=F-16C-52
//	-3000102
//
// Parser turns a byte stream into a lazy sequence of typed records and Writer
// turns records back into bytes that re-parse to equal values. Both are
// single-goroutine, forward-only transforms. Decompression of zipped
// recordings is left to the caller.
package acmi
