// Package whisper provides an stt.Provider backed by a local whisper.cpp
// model via the CGO Go bindings. The whisper.cpp static library
// (libwhisper.a) and headers must be available at link time via LIBRARY_PATH
// and C_INCLUDE_PATH.
package whisper

const (
	defaultLanguage = "en"
	defaultBeamSize = 5
)
