package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okian/courtquote/internal/adapters/http/api"
	"github.com/okian/courtquote/internal/adapters/render"
	"github.com/okian/courtquote/internal/adapters/repository"
	service "github.com/okian/courtquote/internal/app"
	"github.com/okian/courtquote/internal/domain/catalog"
	"github.com/okian/courtquote/internal/domain/model"
	"github.com/okian/courtquote/internal/domain/normalize"
	"github.com/okian/courtquote/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// mockDeps implements api.Dependencies with canned results.
type mockDeps struct {
	submitErr   error
	replayed    bool
	gotBody     []byte
	gotKey      string
	gotLimit    int
	gotFormat   render.Format
	stored      map[string]model.Quotation
	storeErr    error
	document    []byte
	catalogErr  error
	kit         []model.EquipmentItem
	gotKitSport string
}

func newMockDeps() *mockDeps {
	return &mockDeps{
		stored: map[string]model.Quotation{
			"NXR000001": {QuotationNumber: "NXR000001", Status: model.StatusPending, Pricing: model.Breakdown{TotalCost: 45500}},
		},
		document: []byte("%PDF-1.3 test"),
	}
}

func (m *mockDeps) Submit(_ context.Context, body []byte, key string) (model.Quotation, bool, error) {
	m.gotBody = body
	m.gotKey = key
	if m.submitErr != nil {
		return model.Quotation{}, false, m.submitErr
	}
	return m.stored["NXR000001"], m.replayed, nil
}

func (m *mockDeps) Get(_ context.Context, number string) (model.Quotation, error) {
	if m.storeErr != nil {
		return model.Quotation{}, m.storeErr
	}
	q, ok := m.stored[number]
	if !ok {
		return model.Quotation{}, repository.ErrNotFound
	}
	return q, nil
}

func (m *mockDeps) List(_ context.Context, limit int) ([]model.Quotation, error) {
	m.gotLimit = limit
	if m.storeErr != nil {
		return nil, m.storeErr
	}
	return []model.Quotation{m.stored["NXR000001"]}, nil
}

func (m *mockDeps) Document(ctx context.Context, number string, format render.Format) ([]byte, error) {
	m.gotFormat = format
	if _, err := m.Get(ctx, number); err != nil {
		return nil, err
	}
	return m.document, nil
}

func (m *mockDeps) Sports() ([]catalog.Sport, error) {
	if m.catalogErr != nil {
		return nil, m.catalogErr
	}
	return []catalog.Sport{{ID: "tennis", Name: "Tennis Court", Icon: "🎾"}}, nil
}

func (m *mockDeps) EquipmentKit(sport string) ([]model.EquipmentItem, error) {
	m.gotKitSport = sport
	if m.catalogErr != nil {
		return nil, m.catalogErr
	}
	return m.kit, nil
}

func (m *mockDeps) Pricing() (catalog.Dump, error) {
	if m.catalogErr != nil {
		return catalog.Dump{}, m.catalogErr
	}
	return catalog.MustDefault().Dump(), nil
}

func (m *mockDeps) GetStats() map[string]interface{} {
	return map[string]interface{}{"started": true}
}

func newMux(deps *mockDeps) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps).Register(context.Background(), mux)
	return mux
}

func do(mux *http.ServeMux, method, target, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decodeError(w *httptest.ResponseRecorder) map[string]string {
	var out map[string]string
	So(json.Unmarshal(w.Body.Bytes(), &out), ShouldBeNil)
	return out
}

func TestServer_Register(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := newMockDeps()
		mux := newMux(deps)

		Convey("Then the health endpoint serves metrics", func() {
			w := do(mux, http.MethodGet, "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("Then the stats endpoint serves JSON", func() {
			w := do(mux, http.MethodGet, "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"started":true`)
		})

		Convey("Then unsupported methods are rejected", func() {
			w := do(mux, http.MethodDelete, "/quotations", "")
			So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
		})

		Convey("Then a nil mux panics", func() {
			So(func() { api.NewServer(deps).Register(context.Background(), nil) }, ShouldPanic)
		})
	})
}

func TestQuotationHandler_Create(t *testing.T) {
	Convey("Given the quotation endpoints", t, func() {
		deps := newMockDeps()
		mux := newMux(deps)

		Convey("When a submission succeeds", func() {
			w := do(mux, http.MethodPost, "/quotations", `{"a":1}`, api.IdempotencyHeader, " key-1 ")

			Convey("Then it returns 201 with the quotation", func() {
				So(w.Code, ShouldEqual, http.StatusCreated)
				So(w.Header().Get("Location"), ShouldEqual, "/quotations/NXR000001")
				So(string(deps.gotBody), ShouldEqual, `{"a":1}`)
				So(deps.gotKey, ShouldEqual, "key-1")

				var q model.Quotation
				So(json.Unmarshal(w.Body.Bytes(), &q), ShouldBeNil)
				So(q.QuotationNumber, ShouldEqual, "NXR000001")
				So(q.Pricing.TotalCost, ShouldEqual, 45500)
			})
		})

		Convey("When the legacy path is used", func() {
			w := do(mux, http.MethodPost, "/api/quotations", `{}`)

			Convey("Then it behaves the same", func() {
				So(w.Code, ShouldEqual, http.StatusCreated)
			})
		})

		Convey("When the submission is a replay", func() {
			deps.replayed = true
			w := do(mux, http.MethodPost, "/quotations", `{}`, api.IdempotencyHeader, "key-1")

			Convey("Then it returns 200 and flags the replay", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get(api.ReplayedHeader), ShouldEqual, "true")
			})
		})

		Convey("When validation fails", func() {
			cases := []struct {
				err  error
				code string
			}{
				{normalize.ErrMissingClientInfo, "missing_client_info"},
				{normalize.ErrMissingSport, "missing_sport"},
				{normalize.ErrMissingRequirements, "missing_requirements"},
				{normalize.ErrMalformedRequest, "bad_request"},
			}
			for _, tc := range cases {
				deps.submitErr = tc.err
				w := do(mux, http.MethodPost, "/quotations", `{}`)

				So(w.Code, ShouldEqual, http.StatusBadRequest)
				body := decodeError(w)
				So(body["code"], ShouldEqual, tc.code)
				So(body["message"], ShouldEqual, tc.err.Error())
			}
		})

		Convey("When the same key is still in flight", func() {
			deps.submitErr = service.ErrSubmissionInProgress
			w := do(mux, http.MethodPost, "/quotations", `{}`)

			Convey("Then it returns 409", func() {
				So(w.Code, ShouldEqual, http.StatusConflict)
				So(decodeError(w)["code"], ShouldEqual, "submission_in_progress")
			})
		})

		Convey("When persistence is unavailable", func() {
			deps.submitErr = fmt.Errorf("%w: insert: %w", service.ErrPersistenceUnavailable, errors.New("secret dsn"))
			w := do(mux, http.MethodPost, "/quotations", `{}`)

			Convey("Then it returns a retryable 500 without leaking the cause", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				So(w.Header().Get("Retry-After"), ShouldEqual, "1")
				body := decodeError(w)
				So(body["code"], ShouldEqual, "persistence_unavailable")
				So(body["message"], ShouldNotContainSubstring, "secret")
			})
		})

		Convey("When the catalog is missing", func() {
			deps.submitErr = catalog.ErrCatalogUnavailable
			w := do(mux, http.MethodPost, "/quotations", `{}`)

			Convey("Then it returns 500 catalog_unavailable", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				So(w.Header().Get("Retry-After"), ShouldBeEmpty)
				So(decodeError(w)["code"], ShouldEqual, "catalog_unavailable")
			})
		})

		Convey("When the body is too large", func() {
			mux := http.NewServeMux()
			api.NewServer(deps, api.WithMaxBodyBytes(8)).Register(context.Background(), mux)
			w := do(mux, http.MethodPost, "/quotations", `{"clientInfo":{}}`)

			Convey("Then it returns 413", func() {
				So(w.Code, ShouldEqual, http.StatusRequestEntityTooLarge)
				So(decodeError(w)["code"], ShouldEqual, "body_too_large")
			})
		})
	})
}

func TestQuotationHandler_Read(t *testing.T) {
	Convey("Given the quotation read endpoints", t, func() {
		deps := newMockDeps()
		mux := newMux(deps)

		Convey("When listing without a limit", func() {
			w := do(mux, http.MethodGet, "/quotations", "")

			Convey("Then the default page size is used", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.gotLimit, ShouldEqual, api.DefaultListLimit)
			})
		})

		Convey("When listing with a limit", func() {
			w := do(mux, http.MethodGet, "/quotations?limit=5", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.gotLimit, ShouldEqual, 5)
		})

		Convey("When the limit is invalid", func() {
			for _, l := range []string{"0", "-1", "abc"} {
				w := do(mux, http.MethodGet, "/quotations?limit="+l, "")
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			}
		})

		Convey("When fetching a stored quotation", func() {
			w := do(mux, http.MethodGet, "/quotations/NXR000001", "")

			Convey("Then it is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"quotationNumber":"NXR000001"`)
			})
		})

		Convey("When fetching an unknown quotation", func() {
			w := do(mux, http.MethodGet, "/quotations/NXR000404", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(decodeError(w)["code"], ShouldEqual, "not_found")
		})

		Convey("When the number is malformed", func() {
			w := do(mux, http.MethodGet, "/quotations/42", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the store fails", func() {
			deps.storeErr = service.ErrPersistenceUnavailable
			w := do(mux, http.MethodGet, "/quotations", "")
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
		})

		Convey("When a document is requested", func() {
			w := do(mux, http.MethodGet, "/quotations/NXR000001/document", "")

			Convey("Then the PDF is served as an attachment", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.gotFormat, ShouldEqual, render.FormatPDF)
				So(w.Header().Get("Content-Type"), ShouldEqual, "application/pdf")
				So(w.Header().Get("Content-Disposition"), ShouldContainSubstring, `filename="NXR000001.pdf"`)
				So(w.Body.String(), ShouldStartWith, "%PDF")
			})
		})

		Convey("When a spreadsheet is requested", func() {
			w := do(mux, http.MethodGet, "/quotations/NXR000001/document?format=xlsx", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.gotFormat, ShouldEqual, render.FormatXLSX)
			So(w.Header().Get("Content-Disposition"), ShouldContainSubstring, ".xlsx")
		})

		Convey("When an unknown format is requested", func() {
			w := do(mux, http.MethodGet, "/quotations/NXR000001/document?format=docx", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeError(w)["code"], ShouldEqual, "unsupported_format")
		})
	})
}

func TestCatalogHandler(t *testing.T) {
	Convey("Given the catalog endpoints", t, func() {
		deps := newMockDeps()
		mux := newMux(deps)

		Convey("When the sports config is requested", func() {
			w := do(mux, http.MethodGet, "/sports-config", "")

			Convey("Then sports are wrapped in an object", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var body struct {
					Sports []catalog.Sport `json:"sports"`
				}
				So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
				So(body.Sports[0].ID, ShouldEqual, "tennis")
				So(w.Body.String(), ShouldContainSubstring, `"image"`)
			})
		})

		Convey("When a sport's equipment is requested", func() {
			deps.kit = []model.EquipmentItem{{ID: "tennis-net", Name: "Tennis Net", Quantity: 1, UnitCost: 8000, TotalCost: 8000}}
			w := do(mux, http.MethodGet, "/equipment/tennis", "")

			Convey("Then the priced kit is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.gotKitSport, ShouldEqual, "tennis")
				So(w.Body.String(), ShouldContainSubstring, `"totalCost":8000`)
			})
		})

		Convey("When the pricing tables are requested", func() {
			w := do(mux, http.MethodGet, "/debug/pricing", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"drainage-system":45`)
		})

		Convey("When the catalog is unavailable", func() {
			deps.catalogErr = catalog.ErrCatalogUnavailable
			for _, path := range []string{"/sports-config", "/equipment/tennis", "/debug/pricing"} {
				w := do(mux, http.MethodGet, path, "")
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
			}
		})
	})
}

func TestErrors(t *testing.T) {
	Convey("Given wrapped API errors", t, func() {
		cause := errors.New("boom")

		Convey("Then kinds and causes are both visible to errors.Is", func() {
			err := api.WrapKind("api.op", api.ErrBadRequest, cause)
			So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.op: bad request: boom")
		})

		Convey("Then NewKind carries only the kind", func() {
			err := api.NewKind("api.op", api.ErrBadRequest)
			So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.op: bad request")
		})

		Convey("Then Wrap ignores nil", func() {
			So(api.Wrap("api.op", nil), ShouldBeNil)
			So(api.Wrap("api.op", cause).Error(), ShouldEqual, "api.op: boom")
		})
	})
}
