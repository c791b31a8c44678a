package ntt

import (
	"github.com/lookbusy1344/go-apfloat/aferrors"
	"github.com/lookbusy1344/go-apfloat/modmath"
	"github.com/lookbusy1344/go-apfloat/ntt/registry"
)

// Forward3 computes the in-place NTT of data, whose length N must equal
// 3*2^maxLogN, via the factor-3 decimation of spec.md §4.4: split into
// three stride-3 subsequences of length M=2^maxLogN, transform each
// with the ordinary power-of-two path, twiddle-multiply, and combine
// with a radix-3 butterfly using a primitive cube root of unity.
func Forward3(field modmath.Field, data []uint64, maxLogN int) error {
	m := int64(1) << uint(maxLogN)
	n := int64(len(data))
	if n != 3*m {
		return &aferrors.InternalError{Message: "factor-3 NTT requires length 3*2^maxLogN"}
	}

	table3, err := registry.Get3(field, maxLogN)
	if err != nil {
		return err
	}

	x0 := make([]uint64, m)
	x1 := make([]uint64, m)
	x2 := make([]uint64, m)
	for r := int64(0); r < m; r++ {
		x0[r] = data[3*r]
		x1[r] = data[3*r+1]
		x2[r] = data[3*r+2]
	}

	if err := Forward(field, x0, maxLogN); err != nil {
		return err
	}
	if err := Forward(field, x1, maxLogN); err != nil {
		return err
	}
	if err := Forward(field, x2, maxLogN); err != nil {
		return err
	}

	w3, w3Sq := table3.W3, table3.W3Sq
	for k0 := int64(0); k0 < m; k0++ {
		a := x0[k0]
		b := field.Mul(x1[k0], table3.TwiddleK[k0])
		c := field.Mul(x2[k0], table3.TwiddleK2[k0])

		data[k0] = field.Add(a, field.Add(b, c))
		data[k0+m] = field.Add(a, field.Add(field.Mul(w3, b), field.Mul(w3Sq, c)))
		data[k0+2*m] = field.Add(a, field.Add(field.Mul(w3Sq, b), field.Mul(w3, c)))
	}
	return nil
}

// Inverse3 computes the in-place inverse of Forward3's transform,
// including the final N^-1 scaling (spec.md §4.4).
func Inverse3(field modmath.Field, data []uint64, maxLogN int) error {
	m := int64(1) << uint(maxLogN)
	n := int64(len(data))
	if n != 3*m {
		return &aferrors.InternalError{Message: "factor-3 inverse NTT requires length 3*2^maxLogN"}
	}

	table3, err := registry.Get3(field, maxLogN)
	if err != nil {
		return err
	}

	inv3 := registry.InverseMod(field, 3)
	w3Inv := registry.InverseMod(field, table3.W3)
	w3InvSq := field.Mul(w3Inv, w3Inv)

	x0 := make([]uint64, m)
	x1 := make([]uint64, m)
	x2 := make([]uint64, m)

	for k0 := int64(0); k0 < m; k0++ {
		x0v, x1v, x2v := data[k0], data[k0+m], data[k0+2*m]

		a := field.Mul(field.Add(x0v, field.Add(x1v, x2v)), inv3)
		b := field.Mul(field.Add(x0v, field.Add(field.Mul(w3Inv, x1v), field.Mul(w3InvSq, x2v))), inv3)
		c := field.Mul(field.Add(x0v, field.Add(field.Mul(w3InvSq, x1v), field.Mul(w3Inv, x2v))), inv3)

		x0[k0] = a
		omegaInvK0 := registry.InverseMod(field, table3.TwiddleK[k0])
		omegaInv2K0 := registry.InverseMod(field, table3.TwiddleK2[k0])
		x1[k0] = field.Mul(b, omegaInvK0)
		x2[k0] = field.Mul(c, omegaInv2K0)
	}

	if err := Inverse(field, x0, maxLogN); err != nil {
		return err
	}
	if err := Inverse(field, x1, maxLogN); err != nil {
		return err
	}
	if err := Inverse(field, x2, maxLogN); err != nil {
		return err
	}

	for r := int64(0); r < m; r++ {
		data[3*r] = x0[r]
		data[3*r+1] = x1[r]
		data[3*r+2] = x2[r]
	}
	return nil
}
