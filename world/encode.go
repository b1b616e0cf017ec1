package world

import (
	"bytes"
	"encoding/binary"

	"github.com/voxelforge/voxphys/oerror"
)

// Chunk payload format, little-endian: one byte per section, 0 for an empty
// section or 1 followed by the raw block id, fluid and sub-state arrays.

const sectionPayloadSize = SectionVolume*4 + SectionVolume + SectionVolume

// EncodeChunk serializes a chunk column into the cacheable payload form.
func EncodeChunk(c *Chunk) []byte {
	buf := bytes.NewBuffer(make([]byte, 0, SectionCount))
	for _, s := range c.sections {
		if s == nil {
			buf.WriteByte(0)
			continue
		}
		buf.WriteByte(1)
		var ids [SectionVolume * 4]byte
		for i, id := range s.blocks {
			binary.LittleEndian.PutUint32(ids[i*4:], id)
		}
		buf.Write(ids[:])
		buf.Write(s.fluids[:])
		buf.Write(s.subs[:])
	}
	return buf.Bytes()
}

// DecodeChunk parses a chunk payload. Truncated or malformed payloads surface
// as invalid-world-state errors rather than partially decoded columns.
func DecodeChunk(payload []byte) (*Chunk, error) {
	c := NewChunk()
	off := 0
	for si := 0; si < SectionCount; si++ {
		if off >= len(payload) {
			return nil, oerror.InvalidWorld("chunk payload truncated at section %d", si)
		}
		flag := payload[off]
		off++
		switch flag {
		case 0:
			continue
		case 1:
			if off+sectionPayloadSize > len(payload) {
				return nil, oerror.InvalidWorld("chunk payload truncated in section %d", si)
			}
			s := &Section{}
			for i := 0; i < SectionVolume; i++ {
				s.blocks[i] = binary.LittleEndian.Uint32(payload[off+i*4:])
			}
			off += SectionVolume * 4
			copy(s.fluids[:], payload[off:off+SectionVolume])
			off += SectionVolume
			copy(s.subs[:], payload[off:off+SectionVolume])
			off += SectionVolume
			c.sections[si] = s
		default:
			return nil, oerror.InvalidWorld("chunk payload section %d has flag %d", si, flag)
		}
	}
	if off != len(payload) {
		return nil, oerror.InvalidWorld("chunk payload has %d trailing bytes", len(payload)-off)
	}
	return c, nil
}
