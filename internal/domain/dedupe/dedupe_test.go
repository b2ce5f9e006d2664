package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	dedupe "github.com/okian/courtquote/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	Convey("Given a new InMemoryDeduper", t, func() {
		ctx := context.Background()

		Convey("When creating a deduper with default options", func() {
			d := dedupe.NewInMemoryDeduper()

			Convey("Then it should be empty", func() {
				So(d, ShouldNotBeNil)
				So(d.Size(), ShouldEqual, 0)
			})
		})

		Convey("When a key is claimed for the first time", func() {
			d := dedupe.NewInMemoryDeduper()
			entry, seen := d.SeenAndRecord(ctx, "key-1")

			Convey("Then it should be newly recorded", func() {
				So(seen, ShouldBeFalse)
				So(entry, ShouldResemble, dedupe.Entry{})
				So(d.Size(), ShouldEqual, 1)
			})

			Convey("And it is claimed again before completing", func() {
				entry, seen := d.SeenAndRecord(ctx, "key-1")

				Convey("Then it should be reported as in flight", func() {
					So(seen, ShouldBeTrue)
					So(entry.Done, ShouldBeFalse)
					So(d.Size(), ShouldEqual, 1)
				})
			})

			Convey("And it is completed", func() {
				d.Complete(ctx, "key-1", "NXR000007")
				entry, seen := d.SeenAndRecord(ctx, "key-1")

				Convey("Then the quotation number should be returned", func() {
					So(seen, ShouldBeTrue)
					So(entry.Done, ShouldBeTrue)
					So(entry.Number, ShouldEqual, "NXR000007")
				})
			})

			Convey("And it is released", func() {
				d.Unrecord(ctx, "key-1")

				Convey("Then it can be claimed again", func() {
					So(d.Size(), ShouldEqual, 0)
					_, seen := d.SeenAndRecord(ctx, "key-1")
					So(seen, ShouldBeFalse)
				})
			})
		})

		Convey("When completing or releasing an unknown key", func() {
			d := dedupe.NewInMemoryDeduper()
			d.Complete(ctx, "ghost", "NXR000001")
			d.Unrecord(ctx, "ghost")

			Convey("Then nothing should be recorded", func() {
				So(d.Size(), ShouldEqual, 0)
				_, seen := d.SeenAndRecord(ctx, "ghost")
				So(seen, ShouldBeFalse)
			})
		})

		Convey("When the bounded deduper is full", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))
			for _, k := range []string{"k1", "k2", "k3"} {
				_, seen := d.SeenAndRecord(ctx, k)
				So(seen, ShouldBeFalse)
			}
			_, seen := d.SeenAndRecord(ctx, "k4")

			Convey("Then the oldest key should be evicted", func() {
				So(seen, ShouldBeFalse)
				So(d.Size(), ShouldEqual, 3)

				_, seen3 := d.SeenAndRecord(ctx, "k3")
				So(seen3, ShouldBeTrue)
				_, seen4 := d.SeenAndRecord(ctx, "k4")
				So(seen4, ShouldBeTrue)
				_, seen1 := d.SeenAndRecord(ctx, "k1")
				So(seen1, ShouldBeFalse)
				So(d.Size(), ShouldEqual, 3)
			})
		})

		Convey("When a middle key is released", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))
			d.SeenAndRecord(ctx, "a")
			d.SeenAndRecord(ctx, "b")
			d.SeenAndRecord(ctx, "c")
			d.Unrecord(ctx, "b")
			d.SeenAndRecord(ctx, "d")
			d.SeenAndRecord(ctx, "e")

			Convey("Then eviction should still follow claim order", func() {
				So(d.Size(), ShouldEqual, 3)
				_, seenC := d.SeenAndRecord(ctx, "c")
				So(seenC, ShouldBeTrue)
				_, seenA := d.SeenAndRecord(ctx, "a")
				So(seenA, ShouldBeFalse)
			})
		})

		Convey("When the deduper is unbounded", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))
			const n = 1000
			for i := 0; i < n; i++ {
				d.SeenAndRecord(ctx, fmt.Sprintf("key-%d", i))
			}

			Convey("Then nothing should be evicted", func() {
				So(d.Size(), ShouldEqual, int64(n))
				_, seen := d.SeenAndRecord(ctx, "key-0")
				So(seen, ShouldBeTrue)
			})
		})
	})
}

func TestDedupeConcurrency(t *testing.T) {
	Convey("Given many goroutines racing on the same key", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(100))
		var winners atomic.Int32
		var wg sync.WaitGroup

		for i := 0; i < 32; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, seen := d.SeenAndRecord(context.Background(), "shared"); !seen {
					winners.Add(1)
				}
			}()
		}
		wg.Wait()

		Convey("Then exactly one should claim it", func() {
			So(winners.Load(), ShouldEqual, 1)
			So(d.Size(), ShouldEqual, 1)
		})
	})

	Convey("Given concurrent claims and releases", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(1000))
		var wg sync.WaitGroup
		for g := 0; g < 10; g++ {
			wg.Add(1)
			go func(g int) {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					key := fmt.Sprintf("key-%d-%d", g, j)
					d.SeenAndRecord(context.Background(), key)
					if j%2 == 0 {
						d.Unrecord(context.Background(), key)
					}
				}
			}(g)
		}
		wg.Wait()

		Convey("Then only the kept keys should remain", func() {
			So(d.Size(), ShouldEqual, 500)
		})
	})
}
