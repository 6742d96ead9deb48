package protocol

import "bytes"

// frame prepends id's 4-byte little-endian header onto body, producing the
// exact bytes a session's writer goroutine blits straight to the socket.
func frame(id PacketID, body []byte) []byte {
	out := make([]byte, 4+len(body))
	var hdr [4]byte
	putU32LE(hdr[:], uint32(id))
	copy(out, hdr[:])
	copy(out[4:], body)
	return out
}

func putU32LE(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

// EncodeConnectionAcceptance returns the fixed empty ConnectionAcceptance
// frame: just the packet-ID header.
func EncodeConnectionAcceptance() []byte {
	return frame(PacketConnectionAcceptance, nil)
}

// EncodeCreatureAction returns a, fully framed.
func EncodeCreatureAction(a CreatureAction) []byte {
	w := NewWriter()
	WriteCreatureAction(w, a)
	return frame(PacketCreatureAction, w.Bytes())
}

// EncodeHit returns h, fully framed.
func EncodeHit(h Hit) []byte {
	w := NewWriter()
	WriteHit(w, h)
	return frame(PacketHit, w.Bytes())
}

// EncodeStatusEffect returns s, fully framed.
func EncodeStatusEffect(s StatusEffect) []byte {
	w := NewWriter()
	WriteStatusEffect(w, s)
	return frame(PacketStatusEffect, w.Bytes())
}

// EncodeProjectile returns p, fully framed.
func EncodeProjectile(p Projectile) []byte {
	w := NewWriter()
	WriteProjectile(w, p)
	return frame(PacketProjectile, w.Bytes())
}

// EncodeWorldUpdate returns wu, fully framed.
func EncodeWorldUpdate(wu WorldUpdate) []byte {
	w := NewWriter()
	WriteWorldUpdate(w, wu)
	return frame(PacketWorldUpdate, w.Bytes())
}

// EncodeIngameDatetime returns d, fully framed.
func EncodeIngameDatetime(d IngameDatetime) []byte {
	w := NewWriter()
	WriteIngameDatetime(w, d)
	return frame(PacketIngameDatetime, w.Bytes())
}

// EncodeChatMessageFromServer returns m, fully framed.
func EncodeChatMessageFromServer(m ChatMessageFromServer) []byte {
	w := NewWriter()
	WriteChatMessageFromServer(w, m)
	return frame(PacketChatMessageFromServer, w.Bytes())
}

// EncodeMapSeed returns m, fully framed.
func EncodeMapSeed(m MapSeed) []byte {
	w := NewWriter()
	WriteMapSeed(w, m)
	return frame(PacketMapSeed, w.Bytes())
}

// EncodeProtocolVersion returns m, fully framed — used for the handshake
// rejection reply.
func EncodeProtocolVersion(m ProtocolVersionMsg) []byte {
	w := NewWriter()
	WriteProtocolVersion(w, m)
	return frame(PacketProtocolVersion, w.Bytes())
}

// EncodeCreatureUpdateBytes renders cu (including its packet-ID header and
// internal length prefix) into a standalone byte slice, for callers that
// need the bytes before they have a socket to stream to (e.g. broadcast
// fan-out building one buffer shared by every recipient's send queue).
func EncodeCreatureUpdateBytes(cu *CreatureUpdate) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeCreatureUpdate(&buf, cu); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
