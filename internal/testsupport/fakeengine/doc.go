// Package fakeengine writes stand-in ffmpeg and ffprobe executables for tests.
//
// The fake ffmpeg records every invocation, then either fails with a chosen
// diagnostic or writes the byte concatenation of its -i inputs to its final
// argument. That is enough to exercise staging, ordering, publishing and
// cleanup without a real engine on the test host.
package fakeengine
