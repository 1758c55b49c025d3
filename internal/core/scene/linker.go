package scene

import (
	"github.com/rotisserie/eris"

	"github.com/zeusync/scenekit/internal/core/ecs"
	"github.com/zeusync/scenekit/internal/core/events/bus"
	"github.com/zeusync/scenekit/internal/core/models"
	"github.com/zeusync/scenekit/internal/core/observability/log"
)

type parentLink struct {
	child  string
	parent string
}

// parentTable holds deferred parent references keyed by child name. A later
// record for the same child replaces the earlier one in place.
type parentTable struct {
	links []parentLink
	index map[string]int
}

func newParentTable() *parentTable {
	return &parentTable{index: make(map[string]int)}
}

func (t *parentTable) record(child, parent string) {
	if i, ok := t.index[child]; ok {
		t.links[i].parent = parent
		return
	}
	t.index[child] = len(t.links)
	t.links = append(t.links, parentLink{child: child, parent: parent})
}

// link resolves every recorded reference by name. Failures are recorded per
// link and do not stop the others.
func (s *session) link() {
	for _, l := range s.parents.links {
		if err := s.linkOne(l); err != nil {
			s.fail(err)
		}
	}
}

func (s *session) linkOne(l parentLink) error {
	childID, ok := s.store.EntityByName(l.child)
	if !ok {
		return eris.Wrapf(ErrUnresolvedParent, "child %q not found", l.child)
	}
	parentID, ok := s.store.EntityByName(l.parent)
	if !ok {
		return eris.Wrapf(ErrUnresolvedParent, "parent %q of %q not found", l.parent, l.child)
	}
	parent, err := s.store.Entity(parentID)
	if err != nil {
		return err
	}
	parentTransform, ok := parent.Component(models.KindTransform)
	if !ok {
		return eris.Wrapf(ErrUnresolvedParent, "parent %q has no transform", l.parent)
	}
	childTransform, err := ecs.ComponentIDFromEntity[models.Transform](s.store, childID)
	if err != nil {
		return eris.Wrapf(err, "child %q", l.child)
	}
	if err := s.store.SetParent(childTransform, parentTransform); err != nil {
		return eris.Wrapf(err, "link %q below %q", l.child, l.parent)
	}

	s.log.Debug("parent linked",
		log.String("child", l.child),
		log.String("parent", l.parent),
		log.Int("transform", int(childTransform)),
		log.Int("parent_transform", int(parentTransform)),
	)
	s.publish(bus.ParentLinked, bus.ParentLinkedData{
		Session:         s.id,
		Child:           l.child,
		Parent:          l.parent,
		ChildTransform:  childTransform,
		ParentTransform: parentTransform,
	})
	return nil
}
