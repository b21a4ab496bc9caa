package pose

import "fmt"

// Arity is the number of fields in a pose line.
const Arity = 7

// FieldNames lists the pose fields in wire order.
var FieldNames = [Arity]string{"yaw", "pitch", "roll", "lx", "ly", "rx", "ry"}

const (
	AngleMin      = -180.0
	AngleMax      = 180.0
	CoordinateMin = -1000.0
	CoordinateMax = 1000.0
)

// Record is a validated pose. Angles lie in (-180, 180), coordinates in [-1000, 1000].
type Record struct {
	Yaw   float64
	Pitch float64
	Roll  float64
	LX    float64
	LY    float64
	RX    float64
	RY    float64
}

// Fields returns the values in wire order.
func (r Record) Fields() [Arity]float64 {
	return [Arity]float64{r.Yaw, r.Pitch, r.Roll, r.LX, r.LY, r.RX, r.RY}
}

func (r Record) String() string {
	return fmt.Sprintf(
		"yaw=%g pitch=%g roll=%g lx=%g ly=%g rx=%g ry=%g",
		r.Yaw, r.Pitch, r.Roll, r.LX, r.LY, r.RX, r.RY,
	)
}

func recordFrom(v [Arity]float64) Record {
	return Record{
		Yaw:   v[0],
		Pitch: v[1],
		Roll:  v[2],
		LX:    v[3],
		LY:    v[4],
		RX:    v[5],
		RY:    v[6],
	}
}
