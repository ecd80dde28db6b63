package collision_test

import (
	"errors"

	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/particlesim/internal/collision"
	"github.com/san-kum/particlesim/internal/dynamo"
)

var _ = Describe("ResponseVelocity", func() {
	n := mgl64.Vec3{-1, 0, 0}

	It("reflects a head-on impact exactly with restitution 1", func() {
		v := collision.ResponseVelocity(mgl64.Vec3{20, 0, 0}, n, 1.0, 0.5)
		Expect(v[0]).To(Equal(-20.0))
		Expect(v[1]).To(BeZero())
		Expect(v[2]).To(BeZero())
	})

	It("scales the normal component by restitution", func() {
		v := collision.ResponseVelocity(mgl64.Vec3{10, 0, 0}, n, 0.25, 0)
		Expect(v[0]).To(BeNumerically("~", -2.5, 1e-12))
	})

	It("reduces tangential speed by friction times normal speed", func() {
		v := collision.ResponseVelocity(mgl64.Vec3{2, 5, 0}, n, 1.0, 0.5)
		Expect(v[0]).To(BeNumerically("~", -2, 1e-12))
		Expect(v[1]).To(BeNumerically("~", 4, 1e-12))
		Expect(v[1]).To(BeNumerically("<", 5.0))
	})

	It("stops tangential motion without reversing it when friction dominates", func() {
		for _, vt := range []mgl64.Vec3{{0, 0.5, 0}, {0, -0.3, 0.2}, {0, 1, -1}} {
			v := collision.ResponseVelocity(mgl64.Vec3{10, 0, 0}.Add(vt), n, 0.5, 1.0)
			tangential := v.Sub(n.Mul(v.Dot(n)))
			Expect(tangential.Len()).To(Equal(0.0), "vt=%v", vt)
		}
	})

	It("leaves a velocity that is already leaving the surface unchanged", func() {
		for _, v := range []mgl64.Vec3{{-2, 0, 0}, {-2, 3, 1}, {0, 4, 0}} {
			Expect(collision.ResponseVelocity(v, n, 1.0, 0.5)).To(Equal(v), "v=%v", v)
		}
	})

	It("leaves tiny tangential velocities alone", func() {
		v := collision.ResponseVelocity(mgl64.Vec3{10, 0.005, 0}, n, 1.0, 1.0)
		Expect(v[1]).To(Equal(0.005))
	})
})

var _ = Describe("Resolve", func() {
	It("places the particle on the contact point and keeps its material", func() {
		impact := dynamo.State{
			Position:    mgl64.Vec3{4.999, 0, 0},
			Velocity:    mgl64.Vec3{20, 3, 0},
			Mass:        0.1,
			Lifespan:    120,
			Age:         2,
			Restitution: 0.5,
			Friction:    0.1,
		}
		hit := collision.Hit{Normal: mgl64.Vec3{-1, 0, 0}, Fraction: 0.5, Point: mgl64.Vec3{5, 0, 0}}

		out := collision.Resolve(impact, hit)
		Expect(out.Position).To(Equal(hit.Point))
		Expect(out.Velocity[0]).To(BeNumerically("~", -10, 1e-12))
		Expect(out.Velocity[1]).To(BeNumerically("~", 1, 1e-12))
		Expect(out.Mass).To(Equal(impact.Mass))
		Expect(out.Age).To(Equal(impact.Age))
	})
})

var _ = Describe("PostImpact", func() {
	hit := collision.Hit{Normal: mgl64.Vec3{-1, 0, 0}, Fraction: 0.5, Point: mgl64.Vec3{5, 0, 0}}
	resolved := dynamo.State{Position: hit.Point, Velocity: mgl64.Vec3{-20, 0, 0}}
	candidate := dynamo.State{Position: mgl64.Vec3{6, 1, 0}, Velocity: mgl64.Vec3{20, 0, 0}}

	It("stops on the surface", func() {
		out := collision.PostImpactStop.Finish(resolved, candidate, hit, 0.1)
		Expect(out.Position).To(Equal(mgl64.Vec3{5, 0, 0}))
	})

	It("resumes the remaining part of the step", func() {
		out := collision.PostImpactResume.Finish(resolved, candidate, hit, 0.1)
		Expect(out.Position[0]).To(BeNumerically("~", 4, 1e-12))
	})

	It("mirrors the candidate through the surface point", func() {
		out := collision.PostImpactReflect.Finish(resolved, candidate, hit, 0.1)
		Expect(out.Position.ApproxEqual(mgl64.Vec3{4, 1, 0})).To(BeTrue())
		Expect(out.Velocity).To(Equal(resolved.Velocity))
	})

	DescribeTable("parses strategy names",
		func(name string, want collision.PostImpact) {
			got, err := collision.ParsePostImpact(name)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(want))
			if name != "" {
				Expect(got.String()).To(Equal(name))
			}
		},
		Entry("default", "", collision.PostImpactStop),
		Entry("stop", "stop", collision.PostImpactStop),
		Entry("resume", "resume", collision.PostImpactResume),
		Entry("reflect", "reflect", collision.PostImpactReflect),
	)

	It("rejects unknown strategies", func() {
		_, err := collision.ParsePostImpact("teleport")
		Expect(errors.Is(err, dynamo.ErrUnknownMode)).To(BeTrue())
	})
})
