package protocol

import (
	"encoding/binary"
	"fmt"
	"io"
)

// ReadPacketID reads the 4-byte little-endian packet-ID header that begins
// every frame.
func ReadPacketID(r io.Reader) (PacketID, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return 0, fmt.Errorf("read packet id: %w", err)
	}
	return PacketID(binary.LittleEndian.Uint32(hdr[:])), nil
}

// WritePacketID writes the 4-byte little-endian packet-ID header.
func WritePacketID(w io.Writer, id PacketID) error {
	var hdr [4]byte
	binary.LittleEndian.PutUint32(hdr[:], uint32(id))
	_, err := w.Write(hdr[:])
	return err
}

// ReadExact reads exactly n bytes, the shape every fixed-size packet body
// takes after its packet-ID header.
func ReadExact(r io.Reader, n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("read %d byte body: %w", n, err)
	}
	return buf, nil
}

// abnormalCreatureUpdateZeros is the byte count of the on-join handshake
// quirk: 8 short of a full 4464-byte CreatureUpdate body (the name,
// skill_tree and mana_cubes fields are omitted). Reproduced exactly per
// the upstream client-compatibility behavior; see the design notes on the
// abnormal CreatureUpdate for why this count and not a full record.
const abnormalCreatureUpdateZeros = 4456

// WriteAbnormalCreatureUpdate writes the on-join handshake quirk: the raw
// packet ID, the newly assigned CreatureId, and a run of zero bytes — with
// no length prefix and no presence bitfield. Only the ID portion is ever
// read by the client; the zero run exists purely to fill the buffer size
// a normal CreatureUpdate would occupy.
func WriteAbnormalCreatureUpdate(w io.Writer, id int64) error {
	if err := WritePacketID(w, PacketCreatureUpdate); err != nil {
		return err
	}
	var idBuf [8]byte
	binary.LittleEndian.PutUint64(idBuf[:], uint64(id))
	if _, err := w.Write(idBuf[:]); err != nil {
		return err
	}
	_, err := w.Write(make([]byte, abnormalCreatureUpdateZeros))
	return err
}
