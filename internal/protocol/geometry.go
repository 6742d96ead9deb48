package protocol

// Vec3I64 is a 3D point with 64-bit integer components (world position,
// in sub-block units).
type Vec3I64 struct{ X, Y, Z int64 }

// Vec3I32 is a 3D point with 32-bit integer components (chunk coordinates).
type Vec3I32 struct{ X, Y, Z int32 }

// Vec3F32 is a 3D vector of floats (velocity, acceleration, offsets).
type Vec3F32 struct{ X, Y, Z float32 }

func readVec3I64(r *Reader) (Vec3I64, error) {
	x, err := r.I64()
	if err != nil {
		return Vec3I64{}, err
	}
	y, err := r.I64()
	if err != nil {
		return Vec3I64{}, err
	}
	z, err := r.I64()
	if err != nil {
		return Vec3I64{}, err
	}
	return Vec3I64{x, y, z}, nil
}

func writeVec3I64(w *Writer, v Vec3I64) {
	w.I64(v.X)
	w.I64(v.Y)
	w.I64(v.Z)
}

func readVec3I32(r *Reader) (Vec3I32, error) {
	x, err := r.I32()
	if err != nil {
		return Vec3I32{}, err
	}
	y, err := r.I32()
	if err != nil {
		return Vec3I32{}, err
	}
	z, err := r.I32()
	if err != nil {
		return Vec3I32{}, err
	}
	return Vec3I32{x, y, z}, nil
}

func writeVec3I32(w *Writer, v Vec3I32) {
	w.I32(v.X)
	w.I32(v.Y)
	w.I32(v.Z)
}

func readVec3F32(r *Reader) (Vec3F32, error) {
	x, err := r.F32()
	if err != nil {
		return Vec3F32{}, err
	}
	y, err := r.F32()
	if err != nil {
		return Vec3F32{}, err
	}
	z, err := r.F32()
	if err != nil {
		return Vec3F32{}, err
	}
	return Vec3F32{x, y, z}, nil
}

func writeVec3F32(w *Writer, v Vec3F32) {
	w.F32(v.X)
	w.F32(v.Y)
	w.F32(v.Z)
}
