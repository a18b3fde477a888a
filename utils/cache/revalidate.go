package cache

import (
	"context"
	"log"
)

// Cache tags understood by the rendering tier.
const (
	TagCourseList     = "course:list"
	tagCoursePrefix   = "course:"
	revalidateChannel = "revalidate"
)

// Revalidator signals the rendering tier that cached course views are
// stale. Every mutation of a course (or anything under it) fires a
// single-course tag plus the catalog-wide tag. Signals are idempotent
// fire-and-forget: the tag key is dropped and the tag is published for
// any listener that prefers push invalidation. A nil Revalidator is a
// no-op, which is how the app degrades when Redis is unreachable at boot.
type Revalidator struct {
	cache *RedisCache
}

// NewRevalidator creates a revalidator over an established Redis connection.
func NewRevalidator(cache *RedisCache) *Revalidator {
	return &Revalidator{cache: cache}
}

// CourseChanged invalidates the cached representation of one course.
func (r *Revalidator) CourseChanged(ctx context.Context, courseID string) {
	r.invalidate(ctx, tagCoursePrefix+courseID)
}

// CourseListChanged invalidates the catalog-wide course listing.
func (r *Revalidator) CourseListChanged(ctx context.Context) {
	r.invalidate(ctx, TagCourseList)
}

func (r *Revalidator) invalidate(ctx context.Context, tag string) {
	if r == nil || r.cache == nil {
		return
	}
	if err := r.cache.Delete(ctx, tag); err != nil {
		log.Printf("revalidate: failed to drop tag %q: %v", tag, err)
	}
	if err := r.cache.Publish(ctx, revalidateChannel, tag); err != nil {
		log.Printf("revalidate: failed to publish tag %q: %v", tag, err)
	}
}
