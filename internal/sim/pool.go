package sim

// Pool is a capacity-bounded arena of particle slots. particles and vertices
// are index-aligned: vertices[i] is always the projection of particles[i]
// for every live slot i.
type Pool struct {
	particles []Particle
	vertices  []Vertex
	live      []bool
	free      []int
	count     int
}

func NewPool(capacity int) *Pool {
	p := &Pool{
		particles: make([]Particle, capacity),
		vertices:  make([]Vertex, capacity),
		live:      make([]bool, capacity),
		free:      make([]int, 0, capacity),
	}
	p.Clear()
	return p
}

func (p *Pool) Cap() int { return len(p.particles) }
func (p *Pool) Len() int { return p.count }
func (p *Pool) Full() bool {
	return p.count == len(p.particles)
}

// Alloc claims the lowest recently freed slot. ok is false when the pool is full.
func (p *Pool) Alloc() (int, bool) {
	n := len(p.free)
	if n == 0 {
		return -1, false
	}
	i := p.free[n-1]
	p.free = p.free[:n-1]
	p.live[i] = true
	p.count++
	return i, true
}

// Put stores pt in slot i and refreshes its vertex.
func (p *Pool) Put(i int, pt Particle) {
	p.particles[i] = pt
	p.vertices[i] = vertexOf(pt.State)
}

func (p *Pool) Free(i int) {
	if !p.live[i] {
		return
	}
	p.live[i] = false
	p.particles[i] = Particle{}
	p.vertices[i] = Vertex{}
	p.free = append(p.free, i)
	p.count--
}

func (p *Pool) Live(i int) bool       { return p.live[i] }
func (p *Pool) At(i int) *Particle    { return &p.particles[i] }
func (p *Pool) VertexAt(i int) Vertex { return p.vertices[i] }

// Sync recomputes the vertex of slot i from its particle.
func (p *Pool) Sync(i int) {
	p.vertices[i] = vertexOf(p.particles[i].State)
}

// Slots appends the indices of live slots, in ascending order, to dst.
func (p *Pool) Slots(dst []int) []int {
	for i, ok := range p.live {
		if ok {
			dst = append(dst, i)
		}
	}
	return dst
}

func (p *Pool) Clear() {
	for i := range p.particles {
		p.particles[i] = Particle{}
		p.vertices[i] = Vertex{}
		p.live[i] = false
	}
	p.free = p.free[:0]
	for i := len(p.particles) - 1; i >= 0; i-- {
		p.free = append(p.free, i)
	}
	p.count = 0
}

// Resized returns a pool of the new capacity holding as many of the live
// particles as fit, in slot order.
func (p *Pool) Resized(capacity int) *Pool {
	out := NewPool(capacity)
	for _, i := range p.Slots(nil) {
		j, ok := out.Alloc()
		if !ok {
			break
		}
		out.Put(j, p.particles[i])
	}
	return out
}
