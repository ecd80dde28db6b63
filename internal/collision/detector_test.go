package collision_test

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/particlesim/internal/collision"
	"github.com/san-kum/particlesim/internal/dynamo"
)

func at(p mgl64.Vec3) dynamo.State {
	return dynamo.State{Position: p, Mass: 1, Lifespan: 10, Restitution: 1}
}

var _ = Describe("Box", func() {
	var box *collision.Box

	BeforeEach(func() {
		var err error
		box, err = collision.NewBox(10, 0)
		Expect(err).NotTo(HaveOccurred())
	})

	It("reports no hit while the particle stays inside", func() {
		_, ok := collision.Detect(at(mgl64.Vec3{0, 0, 0}), at(mgl64.Vec3{2, -3, 4.9}), box)
		Expect(ok).To(BeFalse())
	})

	It("reports the +x face with the fraction of the step travelled", func() {
		// 20 units/s for 0.1 s from x=4: the face at x=5 is reached halfway.
		hit, ok := collision.Detect(at(mgl64.Vec3{4, 0, 0}), at(mgl64.Vec3{6, 0, 0}), box)
		Expect(ok).To(BeTrue())
		Expect(hit.Normal).To(Equal(mgl64.Vec3{-1, 0, 0}))
		Expect(hit.Fraction).To(BeNumerically("~", 0.5, 1e-12))
		Expect(hit.Point).To(Equal(mgl64.Vec3{5, 0, 0}))
	})

	It("handles the negative faces", func() {
		hit, ok := collision.Detect(at(mgl64.Vec3{1, 1, -4}), at(mgl64.Vec3{1, 1, -7}), box)
		Expect(ok).To(BeTrue())
		Expect(hit.Normal).To(Equal(mgl64.Vec3{0, 0, 1}))
		Expect(hit.Fraction).To(BeNumerically("~", 1.0/3.0, 1e-12))
		Expect(hit.Point[2]).To(Equal(-5.0))
	})

	It("shrinks the bound by the particle radius", func() {
		padded, err := collision.NewBox(10, 0.5)
		Expect(err).NotTo(HaveOccurred())
		hit, ok := collision.Detect(at(mgl64.Vec3{0, 4, 0}), at(mgl64.Vec3{0, 4.75, 0}), padded)
		Expect(ok).To(BeTrue())
		Expect(hit.Point[1]).To(Equal(4.5))
		Expect(hit.Fraction).To(BeNumerically("~", 2.0/3.0, 1e-12))
	})

	It("breaks ties by the fixed x, y, z scan order", func() {
		hit, ok := collision.Detect(at(mgl64.Vec3{4, 4, 4}), at(mgl64.Vec3{6, -6, 6}), box)
		Expect(ok).To(BeTrue())
		Expect(hit.Normal).To(Equal(mgl64.Vec3{-1, 0, 0}))

		hit, ok = collision.Detect(at(mgl64.Vec3{0, -4, 4}), at(mgl64.Vec3{0, -6, 6}), box)
		Expect(ok).To(BeTrue())
		Expect(hit.Normal).To(Equal(mgl64.Vec3{0, 1, 0}))
	})

	It("clamps the fraction when the particle started outside", func() {
		hit, ok := collision.Detect(at(mgl64.Vec3{5.5, 0, 0}), at(mgl64.Vec3{6, 0, 0}), box)
		Expect(ok).To(BeTrue())
		Expect(hit.Fraction).To(Equal(0.0))
	})

	It("ignores a particle outside the bound that is moving back in", func() {
		shrunk, err := collision.NewBox(6, 0)
		Expect(err).NotTo(HaveOccurred())
		_, ok := collision.Detect(at(mgl64.Vec3{4.5, 0, 0}), at(mgl64.Vec3{4.48, 0, 0}), shrunk)
		Expect(ok).To(BeFalse())
	})

	It("skips a receding axis and reports the next outward one", func() {
		hit, ok := collision.Detect(at(mgl64.Vec3{7, 4, 0}), at(mgl64.Vec3{6.5, 6, 0}), box)
		Expect(ok).To(BeTrue())
		Expect(hit.Normal).To(Equal(mgl64.Vec3{0, -1, 0}))
		Expect(hit.Fraction).To(BeNumerically("~", 0.5, 1e-12))
	})

	It("refuses an unreliable hit when the particle did not move", func() {
		_, ok := collision.Detect(at(mgl64.Vec3{6, 0, 0}), at(mgl64.Vec3{6, 0, 0}), box)
		Expect(ok).To(BeFalse())
	})

	It("rejects sizes that leave no room for the particle", func() {
		_, err := collision.NewBox(1, 0.5)
		Expect(errors.Is(err, dynamo.ErrDegenerateGeometry)).To(BeTrue())
		_, err = collision.NewBox(10, -1)
		Expect(errors.Is(err, dynamo.ErrParameterBounds)).To(BeTrue())
		_, err = collision.NewBox(math.NaN(), 0)
		Expect(errors.Is(err, dynamo.ErrNonFinite)).To(BeTrue())
	})
})

var _ = Describe("Triangle", func() {
	v0 := mgl64.Vec3{0, 0, 0}
	v1 := mgl64.Vec3{0, 10, 10}
	v2 := mgl64.Vec3{0, -10, 10}

	It("derives the unit normal from the vertex order", func() {
		tri, err := collision.NewTriangle(v0, v1, v2)
		Expect(err).NotTo(HaveOccurred())
		_, n := tri.Plane()
		Expect(n).To(Equal(mgl64.Vec3{1, 0, 0}))
	})

	It("detects a crossing inside the patch", func() {
		tri, _ := collision.NewTriangle(v0, v1, v2)
		hit, ok := collision.Detect(at(mgl64.Vec3{-1, 0, 5}), at(mgl64.Vec3{3, 0, 5}), tri)
		Expect(ok).To(BeTrue())
		Expect(hit.Fraction).To(BeNumerically("~", 0.25, 1e-12))
		Expect(hit.Point.ApproxEqualThreshold(mgl64.Vec3{0, 0, 5}, 1e-9)).To(BeTrue())
		Expect(hit.Normal).To(Equal(mgl64.Vec3{-1, 0, 0}))
		Expect(tri.SignedDistance(hit.Point)).To(BeNumerically("<", 0.0))
	})

	It("keeps the contact point on the incoming side of a tilted plane", func() {
		tri, err := collision.NewTriangle(
			mgl64.Vec3{-10, -10, -1}, mgl64.Vec3{10, -10, 1}, mgl64.Vec3{0, 10, 0.3})
		Expect(err).NotTo(HaveOccurred())

		for _, x := range []float64{-3.3, -1.7, 0.1, 1.9, 3.1} {
			for _, y := range []float64{-3.1, 0.7, 2.3} {
				z := -1 + 0.1*(x+10) + 0.015*(y+10)
				prev := at(mgl64.Vec3{x, y, z + 0.5})
				next := at(mgl64.Vec3{x + 0.013, y - 0.007, z - 0.5})
				hit, ok := collision.Detect(prev, next, tri)
				Expect(ok).To(BeTrue(), "x=%v y=%v", x, y)
				Expect(tri.SignedDistance(hit.Point)).To(BeNumerically(">", 0.0), "x=%v y=%v", x, y)

				// A second descent starting from the contact point is still a crossing.
				again, ok := collision.Detect(at(hit.Point), at(hit.Point.Sub(mgl64.Vec3{0, 0, 1e-6})), tri)
				Expect(ok).To(BeTrue(), "x=%v y=%v", x, y)
				Expect(again.Normal.Dot(hit.Normal)).To(BeNumerically(">", 0.0))
			}
		}
	})

	It("ignores crossings of the plane outside the patch", func() {
		tri, _ := collision.NewTriangle(v0, v1, v2)
		_, ok := collision.Detect(at(mgl64.Vec3{-1, 0, -5}), at(mgl64.Vec3{1, 0, -5}), tri)
		Expect(ok).To(BeFalse())
	})

	It("ignores motion that stays on one side", func() {
		tri, _ := collision.NewTriangle(v0, v1, v2)
		_, ok := collision.Detect(at(mgl64.Vec3{1, 0, 5}), at(mgl64.Vec3{3, 0, 5}), tri)
		Expect(ok).To(BeFalse())
	})

	It("works for a triangle that is not aligned with the y-z plane", func() {
		// Floor triangle in the x-y plane: a fixed y-z projection would collapse it.
		tri, err := collision.NewTriangle(
			mgl64.Vec3{-10, -10, 0}, mgl64.Vec3{10, -10, 0}, mgl64.Vec3{0, 10, 0})
		Expect(err).NotTo(HaveOccurred())

		hit, ok := collision.Detect(at(mgl64.Vec3{1, 1, 2}), at(mgl64.Vec3{1, 1, -2}), tri)
		Expect(ok).To(BeTrue())
		Expect(hit.Fraction).To(BeNumerically("~", 0.5, 1e-12))
		Expect(hit.Normal).To(Equal(mgl64.Vec3{0, 0, 1}))

		_, ok = collision.Detect(at(mgl64.Vec3{9, 9, 2}), at(mgl64.Vec3{9, 9, -2}), tri)
		Expect(ok).To(BeFalse())
	})

	It("handles an oblique plane", func() {
		tri, err := collision.NewTriangle(
			mgl64.Vec3{4, 0, 0}, mgl64.Vec3{0, 4, 0}, mgl64.Vec3{0, 0, 4})
		Expect(err).NotTo(HaveOccurred())
		hit, ok := collision.Detect(at(mgl64.Vec3{0, 0, 0}), at(mgl64.Vec3{3, 3, 3}), tri)
		Expect(ok).To(BeTrue())
		Expect(hit.Point.ApproxEqualThreshold(mgl64.Vec3{4.0 / 3, 4.0 / 3, 4.0 / 3}, 1e-9)).To(BeTrue())
		Expect(tri.SignedDistance(hit.Point)).To(BeNumerically("~", 0, 1e-9))
	})

	DescribeTable("classifies containment regardless of vertex order",
		func(p mgl64.Vec3, inside bool) {
			orders := [][3]mgl64.Vec3{
				{v0, v1, v2}, {v0, v2, v1}, {v1, v0, v2},
				{v1, v2, v0}, {v2, v0, v1}, {v2, v1, v0},
			}
			for _, o := range orders {
				tri, err := collision.NewTriangle(o[0], o[1], o[2])
				Expect(err).NotTo(HaveOccurred())
				Expect(tri.Contains(p)).To(Equal(inside), "order %v", o)
			}
		},
		Entry("centroid", mgl64.Vec3{0, 0, 20.0 / 3}, true),
		Entry("vertex", mgl64.Vec3{0, 10, 10}, true),
		Entry("edge midpoint", mgl64.Vec3{0, 5, 5}, true),
		Entry("below the apex", mgl64.Vec3{0, 0, -1}, false),
		Entry("beyond the top edge", mgl64.Vec3{0, 0, 11}, false),
		Entry("beside the slanted edge", mgl64.Vec3{0, 8, 5}, false),
	)

	It("rejects collinear vertices", func() {
		_, err := collision.NewTriangle(
			mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1}, mgl64.Vec3{2, 2, 2})
		Expect(errors.Is(err, dynamo.ErrDegenerateGeometry)).To(BeTrue())
	})
})

var _ = Describe("Detect", func() {
	It("treats a nil boundary as open space", func() {
		_, ok := collision.Detect(at(mgl64.Vec3{}), at(mgl64.Vec3{1e9, 0, 0}), nil)
		Expect(ok).To(BeFalse())
	})

	It("drops non-finite results", func() {
		box, _ := collision.NewBox(10, 0)
		_, ok := collision.Detect(at(mgl64.Vec3{4, 0, 0}), at(mgl64.Vec3{math.Inf(1), 0, 0}), box)
		Expect(ok).To(BeFalse())
	})
})
