package repository_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	repository "github.com/okian/courtquote/internal/adapters/repository"
	"github.com/okian/courtquote/internal/domain/model"
	"github.com/okian/courtquote/internal/domain/quotation"
	. "github.com/smartystreets/goconvey/convey"
)

type storeUnderTest interface {
	repository.Store
	repository.Sequencer
}

func sampleQuotation(seq int64, at time.Time) model.Quotation {
	return model.Quotation{
		ID:              fmt.Sprintf("id-%d", seq),
		QuotationNumber: quotation.FormatNumber(quotation.DefaultPrefix, seq),
		CreatedAt:       at,
		Status:          model.StatusPending,
		ClientInfo:      model.ClientInfo{Name: "Asha", Email: "a@b.c", Phone: "1", Address: "x"},
		ProjectInfo:     model.ProjectInfo{Sport: "tennis", GameType: "tennis", ConstructionType: "standard"},
		Requirements: model.Requirements{
			Base:         model.Surface{Type: "concrete", Area: 260},
			Flooring:     model.Surface{Type: "acrylic", Area: 260},
			Equipment:    []model.EquipmentItem{},
			FeatureShape: model.ShapeNone,
		},
		Pricing: model.Breakdown{Area: 260, BaseCost: 28600, FlooringCost: 16900, ShedCost: 5, TotalCost: 45505},
	}
}

func exerciseStore(newStore func() storeUnderTest) {
	ctx := context.Background()
	base := time.Date(2024, 11, 5, 10, 0, 0, 0, time.UTC)

	Convey("When the store is empty", func() {
		s := newStore()
		defer s.Close()

		n, err := s.CountExisting(ctx)
		So(err, ShouldBeNil)
		So(n, ShouldEqual, 0)

		_, err = s.Get(ctx, "NXR000001")
		So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)

		list, err := s.List(ctx, 10)
		So(err, ShouldBeNil)
		So(list, ShouldBeEmpty)
	})

	Convey("When quotations are inserted", func() {
		s := newStore()
		defer s.Close()

		for i := int64(1); i <= 3; i++ {
			So(s.Insert(ctx, sampleQuotation(i, base.Add(time.Duration(i)*time.Minute))), ShouldBeNil)
		}

		Convey("Then they should be counted", func() {
			n, err := s.CountExisting(ctx)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 3)
		})

		Convey("Then a record should round trip", func() {
			q, err := s.Get(ctx, "NXR000002")
			So(err, ShouldBeNil)
			So(q.ID, ShouldEqual, "id-2")
			So(q.Pricing.TotalCost, ShouldEqual, 45505)
			So(q.Pricing.ShedCost, ShouldEqual, 5)
			So(q.ProjectInfo.GameType, ShouldEqual, "tennis")
			So(q.CreatedAt.Equal(base.Add(2*time.Minute)), ShouldBeTrue)
		})

		Convey("Then listing should return the newest first", func() {
			list, err := s.List(ctx, 2)
			So(err, ShouldBeNil)
			So(len(list), ShouldEqual, 2)
			So(list[0].QuotationNumber, ShouldEqual, "NXR000003")
			So(list[1].QuotationNumber, ShouldEqual, "NXR000002")
		})

		Convey("Then a duplicate number should be rejected", func() {
			dup := sampleQuotation(2, base)
			dup.ID = "other"
			err := s.Insert(ctx, dup)
			So(errors.Is(err, repository.ErrDuplicateKey), ShouldBeTrue)

			q, err := s.Get(ctx, "NXR000002")
			So(err, ShouldBeNil)
			So(q.ID, ShouldEqual, "id-2")
		})

		Convey("Then a non-positive limit should be rejected", func() {
			_, err := s.List(ctx, 0)
			So(errors.Is(err, repository.ErrInvalidLimit), ShouldBeTrue)
		})
	})

	Convey("When sequence numbers are drawn concurrently", func() {
		s := newStore()
		defer s.Close()

		const workers, perWorker = 8, 10
		var mu sync.Mutex
		seen := make(map[int64]bool)
		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < perWorker; i++ {
					n, err := s.NextSequence(ctx)
					if err != nil {
						panic(err)
					}
					mu.Lock()
					seen[n] = true
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		Convey("Then every value should be distinct and contiguous", func() {
			So(len(seen), ShouldEqual, workers*perWorker)
			for i := int64(1); i <= workers*perWorker; i++ {
				So(seen[i], ShouldBeTrue)
			}
		})
	})
}

func TestMemoryStore(t *testing.T) {
	Convey("Given a memory store", t, func() {
		exerciseStore(func() storeUnderTest {
			return repository.NewMemoryStore(context.Background(), repository.WithMetricsUpdateInterval(10*time.Millisecond))
		})
	})

	Convey("Given a memory store with an initial sequence", t, func() {
		s := repository.NewMemoryStore(context.Background(), repository.WithInitialSequence(41))
		defer s.Close()

		n, err := s.NextSequence(context.Background())
		So(err, ShouldBeNil)
		So(n, ShouldEqual, 42)
	})
}

func TestSQLStore(t *testing.T) {
	Convey("Given a sqlite store", t, func() {
		dir := t.TempDir()
		i := 0
		exerciseStore(func() storeUnderTest {
			i++
			dsn := "file:" + filepath.Join(dir, fmt.Sprintf("q%d.db", i)) + "?_journal_mode=WAL&_busy_timeout=5000"
			s, err := repository.NewSQLStore(context.Background(), dsn)
			So(err, ShouldBeNil)
			return s
		})
	})

	Convey("Given a sqlite database that already holds quotations", t, func() {
		ctx := context.Background()
		dsn := "file:" + filepath.Join(t.TempDir(), "seed.db")
		s, err := repository.NewSQLStore(ctx, dsn)
		So(err, ShouldBeNil)
		So(s.Insert(ctx, sampleQuotation(1, time.Now())), ShouldBeNil)
		n, err := s.NextSequence(ctx)
		So(err, ShouldBeNil)
		So(n, ShouldEqual, 1)
		So(s.Close(), ShouldBeNil)

		Convey("When it is reopened", func() {
			s, err := repository.NewSQLStore(ctx, dsn)
			So(err, ShouldBeNil)
			defer s.Close()

			Convey("Then the counter should continue", func() {
				n, err := s.NextSequence(ctx)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 2)
			})
		})
	})
}

func TestDynamoStore(t *testing.T) {
	Convey("Given a DynamoDB store", t, func() {
		exerciseStore(func() storeUnderTest {
			return repository.NewDynamoStore(newFakeDynamo(), "", "")
		})
	})

	Convey("Given a quotations table with existing rows and no counter", t, func() {
		ctx := context.Background()
		fake := newFakeDynamo()
		seed := repository.NewDynamoStore(fake, "q", "c")
		So(seed.Insert(ctx, sampleQuotation(1, time.Now())), ShouldBeNil)
		So(seed.Insert(ctx, sampleQuotation(2, time.Now())), ShouldBeNil)
		s := repository.NewDynamoStore(fake, "q", "c")

		Convey("When the next number is drawn", func() {
			n, err := s.NextSequence(ctx)

			Convey("Then the counter should continue after the stored rows", func() {
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 3)
				So(s.Insert(ctx, sampleQuotation(n, time.Now())), ShouldBeNil)
			})

			Convey("And a second store should not reseed it", func() {
				other := repository.NewDynamoStore(fake, "q", "c")
				m, err := other.NextSequence(ctx)
				So(err, ShouldBeNil)
				So(m, ShouldEqual, n+1)
			})
		})
	})

	Convey("Given a DynamoDB client that fails", t, func() {
		fake := newFakeDynamo()
		fake.fail = errors.New("throttled")
		s := repository.NewDynamoStore(fake, "q", "c")

		Convey("Then errors should be surfaced", func() {
			_, err := s.NextSequence(context.Background())
			So(err, ShouldNotBeNil)
			err = s.Insert(context.Background(), sampleQuotation(1, time.Now()))
			So(err, ShouldNotBeNil)
			So(errors.Is(err, repository.ErrDuplicateKey), ShouldBeFalse)
		})
	})
}

func TestOpen(t *testing.T) {
	Convey("Given backend settings", t, func() {
		ctx := context.Background()

		Convey("When the backend is empty", func() {
			s, err := repository.Open(ctx, repository.Settings{})
			So(err, ShouldBeNil)
			defer s.Close()

			Convey("Then a memory store is returned", func() {
				_, ok := s.(*repository.MemoryStore)
				So(ok, ShouldBeTrue)
			})
		})

		Convey("When sqlite is selected", func() {
			dsn := "file:" + filepath.Join(t.TempDir(), "open.db")
			s, err := repository.Open(ctx, repository.Settings{Backend: "SQLite", SQLiteDSN: dsn})
			So(err, ShouldBeNil)
			defer s.Close()

			Convey("Then the store should sequence numbers", func() {
				_, ok := s.(repository.Sequencer)
				So(ok, ShouldBeTrue)
			})
		})

		Convey("When dynamodb is selected with a local endpoint", func() {
			s, err := repository.Open(ctx, repository.Settings{
				Backend:          repository.BackendDynamoDB,
				DynamoDBEndpoint: "http://127.0.0.1:8000",
				DynamoDBRegion:   "us-east-1",
			})

			Convey("Then a DynamoDB store is built without contacting it", func() {
				So(err, ShouldBeNil)
				_, ok := s.(*repository.DynamoStore)
				So(ok, ShouldBeTrue)
			})
		})

		Convey("When the backend is unknown", func() {
			_, err := repository.Open(ctx, repository.Settings{Backend: "postgres"})
			So(errors.Is(err, repository.ErrUnknownBackend), ShouldBeTrue)
		})
	})
}
