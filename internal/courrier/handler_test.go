package courrier_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/kdiomande/courrier-registry/internal"
	"github.com/kdiomande/courrier-registry/internal/courrier"
	courrierPostgres "github.com/kdiomande/courrier-registry/internal/courrier/postgres"
	"github.com/kdiomande/courrier-registry/internal/directory"
	"github.com/kdiomande/courrier-registry/internal/instruction"
	"github.com/kdiomande/courrier-registry/internal/organization"
	"github.com/kdiomande/courrier-registry/pkg/logger"
)

var _ = Describe("Courrier Handler Integration", func() {
	var (
		db      *gorm.DB
		service *courrier.Service
		handler *courrier.Handler

		user  directory.User
		instr instruction.Instruction
	)

	BeforeEach(func() {
		var err error

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(
			&organization.Department{},
			&organization.Service{},
			&organization.Function{},
			&directory.User{},
			&instruction.Instruction{},
			&courrier.Correspondence{},
			&courrier.Routing{},
		)
		Expect(err).NotTo(HaveOccurred())

		repo := courrierPostgres.NewCourrierRepository(db)
		service = courrier.NewService(repo, logger.L())
		handler = courrier.NewHandler(service)

		dept := organization.Department{Name: "Finance"}
		Expect(db.Create(&dept).Error).NotTo(HaveOccurred())
		svc := organization.Service{Name: "Budget", DepartmentID: dept.ID}
		Expect(db.Create(&svc).Error).NotTo(HaveOccurred())
		fn := organization.Function{Name: "Analyste", ServiceID: svc.ID}
		Expect(db.Create(&fn).Error).NotTo(HaveOccurred())
		user = directory.User{FullName: "A. Martin", FunctionID: fn.ID}
		Expect(db.Create(&user).Error).NotTo(HaveOccurred())
		instr = instruction.Instruction{Label: "Pour information"}
		Expect(db.Create(&instr).Error).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).NotTo(HaveOccurred())
	})

	register := func(subject string) *courrier.Correspondence {
		corr, err := service.CreateCorrespondence(courrier.CreateCorrespondenceDTO{
			Sender:  "Prefecture",
			SentAt:  time.Date(2025, 3, 5, 14, 0, 0, 0, time.UTC),
			Subject: subject,
			Recipients: []courrier.RecipientRef{
				{UserID: user.ID, InstructionID: instr.ID},
			},
		})
		Expect(err).NotTo(HaveOccurred())
		return corr
	}

	Describe("POST /envoie", func() {
		It("registers a correspondence with its fan-out", func() {
			body, err := json.Marshal(courrier.CreateCorrespondenceDTO{
				Sender:  "Prefecture",
				SentAt:  time.Date(2025, 3, 5, 14, 0, 0, 0, time.UTC),
				Subject: "Convocation",
				Recipients: []courrier.RecipientRef{
					{UserID: user.ID, InstructionID: instr.ID},
				},
			})
			Expect(err).NotTo(HaveOccurred())

			req := httptest.NewRequest(http.MethodPost, "/api/v1/courrier/envoie", bytes.NewReader(body))
			rec := httptest.NewRecorder()
			handler.CreateCorrespondence(rec, req)

			Expect(rec.Code).To(Equal(http.StatusCreated))

			var created courrier.Correspondence
			Expect(json.Unmarshal(rec.Body.Bytes(), &created)).NotTo(HaveOccurred())
			Expect(created.Routings).To(HaveLen(1))
		})

		It("returns 422 for an unresolved recipient", func() {
			body, err := json.Marshal(courrier.CreateCorrespondenceDTO{
				Sender:  "Prefecture",
				SentAt:  time.Now(),
				Subject: "Convocation",
				Recipients: []courrier.RecipientRef{
					{UserID: 99999, InstructionID: instr.ID},
				},
			})
			Expect(err).NotTo(HaveOccurred())

			req := httptest.NewRequest(http.MethodPost, "/api/v1/courrier/envoie", bytes.NewReader(body))
			rec := httptest.NewRecorder()
			handler.CreateCorrespondence(rec, req)

			Expect(rec.Code).To(Equal(http.StatusUnprocessableEntity))
		})

		It("returns 400 for a malformed body", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/courrier/envoie", bytes.NewReader([]byte("{")))
			rec := httptest.NewRecorder()
			handler.CreateCorrespondence(rec, req)

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("GET /envoie/{id}", func() {
		getByID := func(id string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/courrier/envoie/"+id, nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", id)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			rec := httptest.NewRecorder()
			handler.GetCorrespondence(rec, req)
			return rec
		}

		It("returns the record", func() {
			corr := register("Convocation")
			rec := getByID(strconv.FormatInt(corr.ID, 10))
			Expect(rec.Code).To(Equal(http.StatusOK))
		})

		It("returns 404 for an unknown id", func() {
			Expect(getByID("424242").Code).To(Equal(http.StatusNotFound))
		})

		It("returns 400 for a non-numeric id", func() {
			Expect(getByID("abc").Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("GET /envoie", func() {
		It("filters by sender and reports the filtered total", func() {
			register("Convocation")

			req := httptest.NewRequest(http.MethodGet, "/api/v1/courrier/envoie?expediteur=prefec", nil)
			rec := httptest.NewRecorder()
			handler.ListCorrespondence(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))

			var page courrier.Page
			Expect(json.Unmarshal(rec.Body.Bytes(), &page)).NotTo(HaveOccurred())
			Expect(page.Total).To(Equal(int64(1)))
		})

		It("rejects a malformed departement_id", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/courrier/envoie?departement_id=abc", nil)
			rec := httptest.NewRecorder()
			handler.ListCorrespondence(rec, req)

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})

		It("rejects a malformed date instead of listing unfiltered", func() {
			register("Convocation")

			req := httptest.NewRequest(http.MethodGet, "/api/v1/courrier/envoie?date_debut=hier", nil)
			rec := httptest.NewRecorder()
			handler.ListCorrespondence(rec, req)

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})

		It("accepts bare dates", func() {
			register("Convocation")

			req := httptest.NewRequest(http.MethodGet, "/api/v1/courrier/envoie?date_debut=2025-01-01", nil)
			rec := httptest.NewRecorder()
			handler.ListCorrespondence(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))

			var page courrier.Page
			Expect(json.Unmarshal(rec.Body.Bytes(), &page)).NotTo(HaveOccurred())
			Expect(page.Total).To(Equal(int64(1)))
		})
	})

	Describe("GET /search", func() {
		It("rejects queries under three characters", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/courrier/search?q=ab", nil)
			rec := httptest.NewRecorder()
			handler.SearchCorrespondence(rec, req)

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})

		It("matches subjects", func() {
			register("Convocation")

			req := httptest.NewRequest(http.MethodGet, "/api/v1/courrier/search?q=convoc", nil)
			rec := httptest.NewRecorder()
			handler.SearchCorrespondence(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))

			var page courrier.Page
			Expect(json.Unmarshal(rec.Body.Bytes(), &page)).NotTo(HaveOccurred())
			Expect(page.Total).To(Equal(int64(1)))
		})
	})

	Describe("GET /recu", func() {
		It("defaults to the authenticated caller", func() {
			register("Convocation")

			req := httptest.NewRequest(http.MethodGet, "/api/v1/courrier/recu", nil)
			req = req.WithContext(internal.ContextWithUserID(req.Context(), user.ID))
			rec := httptest.NewRecorder()
			handler.ListRoutings(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))

			var routings []courrier.Routing
			Expect(json.Unmarshal(rec.Body.Bytes(), &routings)).NotTo(HaveOccurred())
			Expect(routings).To(HaveLen(1))
		})

		It("returns 401 when no identity resolves", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/courrier/recu", nil)
			rec := httptest.NewRecorder()
			handler.ListRoutings(rec, req)

			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		})
	})

	Describe("GET /stats", func() {
		It("aggregates the ledger", func() {
			register("Convocation")

			req := httptest.NewRequest(http.MethodGet, "/api/v1/courrier/stats", nil)
			rec := httptest.NewRecorder()
			handler.GetStats(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))

			var stats courrier.Stats
			Expect(json.Unmarshal(rec.Body.Bytes(), &stats)).NotTo(HaveOccurred())
			Expect(stats.TotalSent).To(Equal(int64(1)))
			Expect(stats.ByDepartment).To(HaveKeyWithValue("Finance", int64(1)))
		})

		It("rejects a malformed date bound", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/courrier/stats?date_fin=demain", nil)
			rec := httptest.NewRecorder()
			handler.GetStats(rec, req)

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})
	})
})
