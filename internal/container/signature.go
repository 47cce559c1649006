package container

import "bytes"

// BitstreamKind identifies whether the input is a bare codestream, an
// ISOBMFF container, or fails to match either signature.
type BitstreamKind int

const (
	KindUnknown BitstreamKind = iota
	KindBare
	KindContainer
	KindInvalid
)

// DetectSignature inspects the start of data and reports the bitstream
// kind. It returns (KindUnknown, needed>0) when data is a valid prefix
// of either signature but too short to disambiguate.
func DetectSignature(data []byte) (kind BitstreamKind, needBytes int) {
	if len(data) == 0 {
		return KindUnknown, len(CodestreamSignature)
	}
	if len(data) >= 2 && bytes.Equal(data[:2], CodestreamSignature) {
		return KindBare, 0
	}
	n := len(ContainerSignature)
	if len(data) >= n && bytes.Equal(data[:n], ContainerSignature) {
		return KindContainer, 0
	}
	// Could still be a short, valid prefix of either signature.
	maxCheck := len(data)
	if maxCheck > 2 {
		maxCheck = 2
	}
	if maxCheck > 0 && bytes.Equal(data[:maxCheck], CodestreamSignature[:maxCheck]) && len(data) < 2 {
		return KindUnknown, 2 - len(data)
	}
	cCheck := len(data)
	if cCheck > n {
		cCheck = n
	}
	if cCheck > 0 && bytes.Equal(data[:cCheck], ContainerSignature[:cCheck]) {
		return KindUnknown, n - len(data)
	}
	return KindInvalid, 0
}
