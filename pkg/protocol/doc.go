// Package protocol implements the binary wire format used to mirror a
// presentation tree to remote clients.
//
// A mirrored backend records every tree mutation as a Mutation; batches of
// mutations are sent to clients in frames.
//
// # Wire Format
//
// All messages are framed with a 4-byte header:
//
//	┌─────────────┬──────────────┬───────────────────────────────┐
//	│ Frame Type  │ Flags        │ Payload Length                │
//	│ (1 byte)    │ (1 byte)     │ (2 bytes, big-endian)         │
//	└─────────────┴──────────────┴───────────────────────────────┘
//
// # Frame Types
//
//   - FrameHello (0x00): session setup, sent once by the server
//   - FrameMutations (0x01): a batch of mutations
//   - FrameError (0x02): an error report
//
// A batch larger than MaxPayloadSize is split over several frames;
// the last one carries FlagFinal.
//
// # Encoding
//
//   - Varint: compact encoding for node IDs and counts (protobuf-style)
//   - Length-prefixed: strings prefixed with a varint length
//   - Big-endian: fixed-width integers
//
// Node IDs are assigned by the sender. ID 0 is never assigned and stands
// for "no node" (an append in InsertBefore).
//
// Example SetAttr mutation encoding:
//
//	[Op: 0x06][Node: varint][Name: len-prefixed][Value: len-prefixed]
//	Total: 9 bytes for node 3, id="a"
package protocol
