package scene

import (
	"sync"
)

// Object is anything a Scene can hold. Renderers type-switch on richer interfaces
// (see game_object.GameObject) to decide how to draw it.
type Object interface {
	// ID returns the identifier assigned by the scene, or 0 before the object is added.
	ID() uint64

	// SetID assigns the identifier. Called by Scene.Add only.
	SetID(id uint64)

	// Name returns a human readable label.
	Name() string

	// Visible reports whether the renderer should draw the object.
	Visible() bool

	// SetVisible shows or hides the object.
	//
	// Parameters:
	//   - visible: the new visibility
	SetVisible(visible bool)
}

// Scene is an ordered collection of objects rendered together from one camera.
// Post-processing passes own private scenes holding only their fullscreen quad.
// Thread-safe for concurrent access.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// Add appends obj to the scene and assigns it an ID if it has none. Adding an object
	// that is already present is a no-op.
	//
	// Parameters:
	//   - obj: the object to add
	//
	// Returns:
	//   - uint64: the object's ID
	Add(obj Object) uint64

	// Get returns the object with the given ID, or nil.
	//
	// Parameters:
	//   - id: the object ID
	//
	// Returns:
	//   - Object: the object or nil
	Get(id uint64) Object

	// Remove removes the object with the given ID. Unknown IDs are ignored.
	//
	// Parameters:
	//   - id: the object ID
	Remove(id uint64)

	// Objects returns a snapshot of the scene's objects in insertion order.
	//
	// Returns:
	//   - []Object: the objects
	Objects() []Object

	// Count returns the number of objects in the scene.
	Count() int

	// Clear removes every object.
	Clear()
}

type scene struct {
	mu *sync.RWMutex

	name    string
	nextID  uint64
	order   []Object
	objects map[uint64]Object
}

var _ Scene = &scene{}

// NewScene creates an empty scene.
//
// Parameters:
//   - name: the scene's identifier
//   - options: functional options to configure the scene
//
// Returns:
//   - Scene: the new scene
func NewScene(name string, options ...SceneBuilderOption) Scene {
	s := &scene{
		mu:      &sync.RWMutex{},
		name:    name,
		nextID:  1,
		objects: make(map[uint64]Object),
	}
	for _, option := range options {
		option(s)
	}
	return s
}

func (s *scene) Name() string {
	return s.name
}

func (s *scene) Add(obj Object) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.add(obj)
}

// add registers obj. Caller must hold the write lock.
func (s *scene) add(obj Object) uint64 {
	if id := obj.ID(); id != 0 {
		if _, ok := s.objects[id]; ok {
			return id
		}
		s.nextID = max(s.nextID, id+1)
	} else {
		obj.SetID(s.nextID)
		s.nextID++
	}
	s.objects[obj.ID()] = obj
	s.order = append(s.order, obj)
	return obj.ID()
}

func (s *scene) Get(id uint64) Object {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.objects[id]
}

func (s *scene) Remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[id]; !ok {
		return
	}
	delete(s.objects, id)
	for i, obj := range s.order {
		if obj.ID() == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *scene) Objects() []Object {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Object, len(s.order))
	copy(out, s.order)
	return out
}

func (s *scene) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

func (s *scene) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = nil
	s.objects = make(map[uint64]Object)
}
