package sim

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/particlesim/internal/dynamo"
)

func TestPool_AllocFree(t *testing.T) {
	p := NewPool(3)

	for want := 0; want < 3; want++ {
		i, ok := p.Alloc()
		if !ok || i != want {
			t.Fatalf("Alloc() = %d, %v; want %d, true", i, ok, want)
		}
	}
	if !p.Full() {
		t.Fatal("expected pool to be full")
	}
	if _, ok := p.Alloc(); ok {
		t.Fatal("Alloc on a full pool must fail")
	}

	p.Free(1)
	p.Free(1)
	if p.Len() != 2 {
		t.Fatalf("Len() = %d after double free, want 2", p.Len())
	}
	if i, ok := p.Alloc(); !ok || i != 1 {
		t.Errorf("Alloc() = %d, %v; want the freed slot 1", i, ok)
	}
}

func TestPool_VertexAlignment(t *testing.T) {
	p := NewPool(4)
	states := []dynamo.State{
		{Position: mgl64.Vec3{1, 2, 3}, Velocity: mgl64.Vec3{0, 0, 0}},
		{Position: mgl64.Vec3{-1, 0, 5}, Velocity: mgl64.Vec3{100, 0, 0}},
	}
	for _, st := range states {
		i, _ := p.Alloc()
		p.Put(i, Particle{State: st})
	}

	for i := range states {
		v := p.VertexAt(i)
		want := vertexOf(states[i])
		if v != want {
			t.Errorf("slot %d vertex = %+v, want %+v", i, v, want)
		}
	}
	if p.VertexAt(1).Color != [3]float32{1, 0, 0} {
		t.Errorf("fast particle color = %v, want red", p.VertexAt(1).Color)
	}

	p.At(0).Position = mgl64.Vec3{7, 7, 7}
	p.Sync(0)
	if p.VertexAt(0).Position != [3]float32{7, 7, 7} {
		t.Errorf("Sync did not refresh vertex: %v", p.VertexAt(0).Position)
	}

	p.Free(0)
	if p.VertexAt(0) != (Vertex{}) {
		t.Errorf("freed slot keeps a stale vertex")
	}
}

func TestPool_Resized(t *testing.T) {
	p := NewPool(4)
	for k := 0; k < 4; k++ {
		i, _ := p.Alloc()
		p.Put(i, Particle{ID: uint64(k + 1)})
	}
	p.Free(0)

	small := p.Resized(2)
	if small.Cap() != 2 || small.Len() != 2 {
		t.Fatalf("Resized(2): cap %d len %d", small.Cap(), small.Len())
	}
	if small.At(0).ID != 2 || small.At(1).ID != 3 {
		t.Errorf("Resized kept IDs %d,%d; want 2,3", small.At(0).ID, small.At(1).ID)
	}

	big := p.Resized(8)
	if big.Len() != 3 {
		t.Errorf("Resized(8).Len() = %d, want 3", big.Len())
	}
}
