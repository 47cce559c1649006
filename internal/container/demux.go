package container

// EventKind tags the variants of Event.
type EventKind int

const (
	EventBitstreamKind EventKind = iota
	EventCodestream
	EventAuxBox
)

// Event is one item emitted by Demux.Feed.
type Event struct {
	Kind          EventKind
	BitstreamKind BitstreamKind // valid when Kind == EventBitstreamKind
	Bytes         []byte        // valid when Kind == EventCodestream or EventAuxBox; a slice into the caller's buffer
	AuxBoxType    uint32        // valid when Kind == EventAuxBox
}

type demuxState int

const (
	stateWaitingSignature demuxState = iota
	stateWaitingBoxHeader
	stateWaitingJxlpIndex
	stateInCodestream
	stateInAuxBox
	stateDone
	stateInvalid
)

// Demux is a streaming event iterator over a JPEG XL file (bare
// codestream or ISOBMFF container), producing a logical codestream
// from possibly-fragmented jxlp parts interleaved with auxiliary boxes.
//
// Grounded on internal/container/parser.go's incremental, FourCC-typed
// box walk; generalized from WebP's flat RIFF chunk list to ISOBMFF's
// (optionally 64-bit-sized, optionally open-ended, optionally
// fragmented) box framing.
//
// Feed is called with the FULL accumulated input seen so far (the
// caller's buffer only grows at the tail; previously-returned Event
// byte slices remain valid as long as the caller never discards or
// overwrites that prefix). This trades a small amount of re-scanning
// convenience for a much simpler suspension model than true zero-copy
// coroutine-style resumption, while preserving the externally observed
// contract of spec.md §5: "feed more bytes and call again".
type Demux struct {
	state demuxState

	consumed int // bytes of the cumulative buffer already processed

	sawJxlc bool
	sawJxlp bool
	nextJxlpIndex uint32

	curType      uint32
	curRemaining int64 // -1 == unbounded (box size field was 0)
	curAuxStart  int   // offset (in the cumulative buffer) of the current aux box's payload start
	bareMode     bool
	jxlpLast     bool
}

// NewDemux creates a Demux ready to process a file from byte 0.
func NewDemux() *Demux { return &Demux{} }

// Feed processes as much of data (the cumulative input buffer) as
// possible and returns the events produced since the last call. When it
// returns with no error and could make no further progress, the caller
// should supply a longer buffer (more bytes appended at the tail) and
// call Feed again. Pass eof=true once no more bytes will ever arrive;
// in that case a dangling "box extends to end of input" is considered
// complete rather than needing more data.
func (d *Demux) Feed(data []byte, eof bool) ([]Event, error) {
	var events []Event
	for {
		switch d.state {
		case stateDone, stateInvalid:
			return events, nil

		case stateWaitingSignature:
			kind, need := DetectSignature(data[d.consumed:])
			if kind == KindUnknown {
				if eof {
					d.state = stateInvalid
					events = append(events, Event{Kind: EventBitstreamKind, BitstreamKind: KindInvalid})
					return events, nil
				}
				return events, nil
			}
			events = append(events, Event{Kind: EventBitstreamKind, BitstreamKind: kind})
			switch kind {
			case KindBare:
				d.bareMode = true
				d.state = stateInCodestream
				d.curRemaining = -1
				// The two signature bytes are themselves part of the codestream.
			case KindContainer:
				d.consumed += len(ContainerSignature)
				d.state = stateWaitingBoxHeader
			default:
				d.state = stateInvalid
				return events, nil
			}
			_ = need

		case stateWaitingBoxHeader:
			hdr, ok, err := parseBoxHeader(data[d.consumed:])
			if err != nil {
				d.state = stateInvalid
				return events, err
			}
			if !ok {
				if eof {
					d.state = stateInvalid
					return events, ErrFileTruncated
				}
				return events, nil
			}
			d.consumed += hdr.HeaderLen
			switch hdr.Type {
			case TypeJXLC:
				if d.sawJxlp {
					d.state = stateInvalid
					return events, ErrInvalidBox
				}
				d.sawJxlc = true
				d.state = stateInCodestream
				d.curRemaining = hdr.PayloadSize()
			case TypeJXLP:
				if d.sawJxlc {
					d.state = stateInvalid
					return events, ErrInvalidBox
				}
				d.sawJxlp = true
				d.state = stateWaitingJxlpIndex
				d.curRemaining = hdr.PayloadSize()
			default:
				d.state = stateInAuxBox
				d.curType = hdr.Type
				d.curRemaining = hdr.PayloadSize()
				d.curAuxStart = d.consumed
			}

		case stateWaitingJxlpIndex:
			if d.consumed+4 > len(data) {
				if eof {
					d.state = stateInvalid
					return events, ErrFileTruncated
				}
				return events, nil
			}
			raw := readBE32(data[d.consumed : d.consumed+4])
			idx := raw &^ 0x80000000
			last := raw&0x80000000 != 0
			if idx != d.nextJxlpIndex {
				d.state = stateInvalid
				return events, ErrInvalidBox
			}
			d.nextJxlpIndex++
			d.jxlpLast = last
			d.consumed += 4
			if d.curRemaining >= 0 {
				d.curRemaining -= 4
			}
			d.state = stateInCodestream

		case stateInCodestream:
			avail := len(data) - d.consumed
			if d.curRemaining < 0 {
				if avail > 0 {
					events = append(events, Event{Kind: EventCodestream, Bytes: data[d.consumed:]})
					d.consumed = len(data)
				}
				if eof {
					d.state = stateDone
				}
				return events, nil
			}
			take := avail
			if int64(take) > d.curRemaining {
				take = int(d.curRemaining)
			}
			if take > 0 {
				events = append(events, Event{Kind: EventCodestream, Bytes: data[d.consumed : d.consumed+take]})
				d.consumed += take
				d.curRemaining -= int64(take)
			}
			if d.curRemaining > 0 {
				return events, nil
			}
			if d.bareMode {
				d.state = stateDone
				return events, nil
			}
			if d.sawJxlp && !d.jxlpLast {
				d.state = stateWaitingBoxHeader
			} else if d.sawJxlp {
				d.state = stateDone
				return events, nil
			} else {
				d.state = stateDone
				return events, nil
			}

		case stateInAuxBox:
			avail := len(data) - d.consumed
			if d.curRemaining < 0 {
				d.consumed = len(data)
				if !eof {
					return events, nil
				}
				d.curRemaining = 0
			} else {
				take := avail
				if int64(take) > d.curRemaining {
					take = int(d.curRemaining)
				}
				d.consumed += take
				d.curRemaining -= int64(take)
				if d.curRemaining > 0 {
					return events, nil
				}
			}
			if d.curType == TypeJHGM || d.curType == TypeJXLI {
				events = append(events, Event{Kind: EventAuxBox, AuxBoxType: d.curType, Bytes: data[d.curAuxStart:d.consumed]})
			}
			d.state = stateWaitingBoxHeader
		}
	}
}
