package overlay

const unknownVersion = "version unknown"

// Version is set at build time with
// -ldflags "-X gitlab.com/accumulatenetwork/overlay.Version=...".
var Version = unknownVersion

func IsVersionKnown() bool {
	return Version != unknownVersion
}
