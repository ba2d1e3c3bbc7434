package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"tourdesk/internal/model"
	"tourdesk/internal/session"
	"tourdesk/internal/suggest"
	"tourdesk/pkg/config"
	"tourdesk/pkg/database"
	"tourdesk/pkg/jwtutil"
	"tourdesk/prometheus"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "tourdesk-uploads")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(dir)

	testCfg := &config.Config{
		Server: config.ServerConfig{
			Port:       "0",
			Env:        "test",
			APIBaseURL: "https://api.example.com/",
		},
		JWT: config.JWTConfig{
			SigningKey:      "test-signing-key",
			ExpirationHours: 1,
		},
		Metrics: config.MetricsConfig{Prefix: "tourdesk_test"},
		Upload: config.UploadConfig{
			Dir:      dir,
			MaxBytes: config.DefaultMaxUploadBytes,
		},
	}

	jwtutil.Initialize(&testCfg.JWT)
	prometheus.InitMetrics(testCfg)
	Init(testCfg)

	os.Exit(m.Run())
}

// setupTest wires a fresh in-memory database and an echo instance.
func setupTest(t *testing.T) *echo.Echo {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	database.SetDB(db)

	e := echo.New()
	e.Validator = NewRequestValidator()
	return e
}

func seedUser(t *testing.T, username, password, role string) model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := model.User{Username: username, Password: string(hash), Role: role}
	require.NoError(t, database.GetDB().Create(&user).Error)
	return user
}

func seedSupplier(t *testing.T, name string) model.Supplier {
	t.Helper()
	s := model.Supplier{Name: name, Phone: "081-000-0000", Line: "@" + name}
	require.NoError(t, database.GetDB().Create(&s).Error)
	return s
}

func seedTour(t *testing.T, supplierID uint, name string, adultPrice float64) model.Tour {
	t.Helper()
	tour := model.Tour{
		TourName:   name,
		SupplierID: &supplierID,
		AdultPrice: adultPrice,
		UpdatedBy:  "seed",
	}
	require.NoError(t, database.GetDB().Create(&tour).Error)
	return tour
}

func jsonRequest(method, target string, payload any) *http.Request {
	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			panic(err)
		}
	}
	req := httptest.NewRequest(method, target, &body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}

func adminSession() *session.User {
	return &session.User{ID: 1, Username: "admin", Role: model.RoleAdmin}
}

func TestLogin(t *testing.T) {
	e := setupTest(t)
	seedUser(t, "admin", "s3cret", model.RoleAdmin)

	t.Run("wrong password", func(t *testing.T) {
		req := jsonRequest(http.MethodPost, "/api/auth/login",
			LoginRequest{Username: "admin", Password: "nope"})
		rec := httptest.NewRecorder()
		require.NoError(t, Login(e.NewContext(req, rec)))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Contains(t, rec.Body.String(), "ชื่อผู้ใช้หรือรหัสผ่านไม่ถูกต้อง")
	})

	t.Run("unknown user", func(t *testing.T) {
		req := jsonRequest(http.MethodPost, "/api/auth/login",
			LoginRequest{Username: "ghost", Password: "s3cret"})
		rec := httptest.NewRecorder()
		require.NoError(t, Login(e.NewContext(req, rec)))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("success issues a valid token", func(t *testing.T) {
		req := jsonRequest(http.MethodPost, "/api/auth/login",
			LoginRequest{Username: "admin", Password: "s3cret"})
		rec := httptest.NewRecorder()
		require.NoError(t, Login(e.NewContext(req, rec)))
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Token string `json:"token"`
			User  struct {
				Username string `json:"username"`
				Role     string `json:"role"`
			} `json:"user"`
		}
		decodeBody(t, rec, &resp)
		require.NotEmpty(t, resp.Token)
		require.Equal(t, "admin", resp.User.Username)
		require.Equal(t, model.RoleAdmin, resp.User.Role)

		claims, err := jwtutil.ValidateToken(resp.Token)
		require.NoError(t, err)
		require.Equal(t, "admin", claims.Username)
	})

	t.Run("missing password rejected", func(t *testing.T) {
		req := jsonRequest(http.MethodPost, "/api/auth/login",
			LoginRequest{Username: "admin"})
		rec := httptest.NewRecorder()
		err := Login(e.NewContext(req, rec))
		require.Error(t, err)
		httpErr, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		require.Equal(t, http.StatusBadRequest, httpErr.Code)
	})
}

func TestListToursSearchAndSort(t *testing.T) {
	e := setupTest(t)
	s := seedSupplier(t, "ABC Tours")
	seedTour(t, s.ID, "Phi Phi Island Tour", 10)
	seedTour(t, s.ID, "James Bond Island", 2)
	seedTour(t, s.ID, "City Temple Walk", 9)

	type listResponse struct {
		Tours []model.Tour `json:"tours"`
		Total int          `json:"total"`
	}

	t.Run("search matches name substring", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/tours?q=island", nil)
		rec := httptest.NewRecorder()
		require.NoError(t, ListTours(e.NewContext(req, rec)))
		require.Equal(t, http.StatusOK, rec.Code)

		var resp listResponse
		decodeBody(t, rec, &resp)
		require.Equal(t, 2, resp.Total)
		for _, tour := range resp.Tours {
			require.Contains(t, strings.ToLower(tour.TourName), "island")
		}
	})

	t.Run("search matches supplier name", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/tours?q=abc", nil)
		rec := httptest.NewRecorder()
		require.NoError(t, ListTours(e.NewContext(req, rec)))

		var resp listResponse
		decodeBody(t, rec, &resp)
		require.Equal(t, 3, resp.Total)
	})

	t.Run("price sort is numeric", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/tours?sort=adult_price&dir=asc", nil)
		rec := httptest.NewRecorder()
		require.NoError(t, ListTours(e.NewContext(req, rec)))

		var resp listResponse
		decodeBody(t, rec, &resp)
		require.Len(t, resp.Tours, 3)
		require.Equal(t, float64(2), resp.Tours[0].AdultPrice)
		require.Equal(t, float64(9), resp.Tours[1].AdultPrice)
		require.Equal(t, float64(10), resp.Tours[2].AdultPrice)
	})
}

func TestCreateToursBatch(t *testing.T) {
	e := setupTest(t)
	s := seedSupplier(t, "Sea Breeze")

	t.Run("creates all tours and records suggestions", func(t *testing.T) {
		req := jsonRequest(http.MethodPost, "/api/tours", BatchTourRequest{
			SupplierID: s.ID,
			Tours: []TourRequest{
				{TourName: "Sunrise Trip", DepartureFrom: "Phuket", Pier: "Rassada"},
				{TourName: "Sunset Trip", DepartureFrom: "Phuket", Pier: "Chalong"},
			},
		})
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		session.Attach(c, adminSession())
		require.NoError(t, CreateTours(c))
		require.Equal(t, http.StatusCreated, rec.Code)

		var count int64
		database.GetDB().Model(&model.Tour{}).Count(&count)
		require.EqualValues(t, 2, count)

		var phuket model.Suggestion
		err := database.GetDB().
			Where("field = ? AND value = ?", suggest.FieldDepartureFrom, "Phuket").
			First(&phuket).Error
		require.NoError(t, err)
		require.EqualValues(t, 2, phuket.UsageCount)
	})

	t.Run("invalid date range rejects the whole batch", func(t *testing.T) {
		var before int64
		database.GetDB().Model(&model.Tour{}).Count(&before)

		req := jsonRequest(http.MethodPost, "/api/tours", BatchTourRequest{
			SupplierID: s.ID,
			Tours: []TourRequest{
				{TourName: "Fine Trip", StartDate: "2026-01-01", EndDate: "2026-02-01"},
				{TourName: "Broken Trip", StartDate: "2026-02-01", EndDate: "2026-01-01"},
			},
		})
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		session.Attach(c, adminSession())
		require.NoError(t, CreateTours(c))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Contains(t, rec.Body.String(), "วันที่สิ้นสุดต้องอยู่หลังวันที่เริ่มต้น")

		var after int64
		database.GetDB().Model(&model.Tour{}).Count(&after)
		require.Equal(t, before, after)
	})

	t.Run("unknown supplier", func(t *testing.T) {
		req := jsonRequest(http.MethodPost, "/api/tours", BatchTourRequest{
			SupplierID: 9999,
			Tours:      []TourRequest{{TourName: "Orphan Trip"}},
		})
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		session.Attach(c, adminSession())
		require.NoError(t, CreateTours(c))
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("no session", func(t *testing.T) {
		req := jsonRequest(http.MethodPost, "/api/tours", BatchTourRequest{
			SupplierID: s.ID,
			Tours:      []TourRequest{{TourName: "Anonymous Trip"}},
		})
		rec := httptest.NewRecorder()
		require.NoError(t, CreateTours(e.NewContext(req, rec)))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestUpdateTourNormalizesLegacyDates(t *testing.T) {
	e := setupTest(t)
	s := seedSupplier(t, "Long Beach")
	tour := seedTour(t, s.ID, "Lagoon Kayak", 900)

	req := jsonRequest(http.MethodPut, "/api/tours/"+fmt.Sprint(tour.ID), TourRequest{
		TourName:  "Lagoon Kayak",
		StartDate: "0000-00-00",
		EndDate:   "2026-06-30",
	})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(tour.ID))
	session.Attach(c, adminSession())
	require.NoError(t, UpdateTour(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var stored model.Tour
	require.NoError(t, database.GetDB().First(&stored, tour.ID).Error)
	require.Nil(t, stored.StartDate)
	require.NotNil(t, stored.EndDate)
	require.Equal(t, "admin", stored.UpdatedBy)
}

func TestDeleteSupplier(t *testing.T) {
	e := setupTest(t)
	busy := seedSupplier(t, "Busy Supplier")
	idle := seedSupplier(t, "Idle Supplier")
	seedTour(t, busy.ID, "Still Running", 500)

	t.Run("refused while tours exist", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/api/suppliers/1", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues(fmt.Sprint(busy.ID))
		require.NoError(t, DeleteSupplier(c))
		require.Equal(t, http.StatusConflict, rec.Code)
		require.Contains(t, rec.Body.String(), "ไม่สามารถลบซัพพลายเออร์ที่ยังมีทัวร์อยู่ได้")
	})

	t.Run("allowed when no tours", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/api/suppliers/2", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues(fmt.Sprint(idle.ID))
		require.NoError(t, DeleteSupplier(c))
		require.Equal(t, http.StatusOK, rec.Code)

		var gone model.Supplier
		err := database.GetDB().First(&gone, idle.ID).Error
		require.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})
}

func TestListSuppliersSmartFilters(t *testing.T) {
	e := setupTest(t)
	complete := seedSupplier(t, "Complete Contact")
	incomplete := model.Supplier{Name: "No Contact"}
	require.NoError(t, database.GetDB().Create(&incomplete).Error)
	seedTour(t, complete.ID, "Something", 100)

	req := httptest.NewRequest(http.MethodGet, "/api/suppliers?filters=incomplete_info,bogus_filter", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, ListSuppliers(e.NewContext(req, rec)))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Suppliers []model.Supplier `json:"suppliers"`
		Total     int              `json:"total"`
	}
	decodeBody(t, rec, &resp)
	require.Equal(t, 1, resp.Total)
	require.Equal(t, "No Contact", resp.Suppliers[0].Name)
}

func multipartUpload(t *testing.T, category, filename, contentType string, content []byte) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	require.NoError(t, w.WriteField("category", category))

	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/suppliers/1/files", &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req, httptest.NewRecorder()
}

func TestUploadSupplierFile(t *testing.T) {
	e := setupTest(t)
	s := seedSupplier(t, "Island Hopper")

	t.Run("accepted image gets a download URL", func(t *testing.T) {
		req, rec := multipartUpload(t, "qr_code", "qr.png", "image/png", []byte("png-bytes"))
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues(fmt.Sprint(s.ID))
		session.Attach(c, adminSession())
		require.NoError(t, UploadSupplierFile(c))
		require.Equal(t, http.StatusCreated, rec.Code)

		var resp map[string]any
		decodeBody(t, rec, &resp)
		require.Equal(t, "qr_code", resp["file_category"])
		require.Equal(t, "image", resp["file_type"])
		fileURL, _ := resp["file_url"].(string)
		require.True(t, strings.HasPrefix(fileURL, "https://api.example.com/uploads/"))
		require.NotContains(t, fileURL, "//uploads")
	})

	t.Run("pdf rejected for image-only category", func(t *testing.T) {
		req, rec := multipartUpload(t, "qr_code", "doc.pdf", "application/pdf", []byte("%PDF-"))
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues(fmt.Sprint(s.ID))
		session.Attach(c, adminSession())
		require.NoError(t, UploadSupplierFile(c))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Contains(t, rec.Body.String(), "เฉพาะรูปภาพ")
	})

	t.Run("unsupported mime type rejected", func(t *testing.T) {
		req, rec := multipartUpload(t, "general", "notes.txt", "text/plain", []byte("hi"))
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues(fmt.Sprint(s.ID))
		session.Attach(c, adminSession())
		require.NoError(t, UploadSupplierFile(c))
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown owner", func(t *testing.T) {
		req, rec := multipartUpload(t, "general", "a.png", "image/png", []byte("x"))
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("4242")
		session.Attach(c, adminSession())
		require.NoError(t, UploadSupplierFile(c))
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestFileURL(t *testing.T) {
	require.Equal(t, "https://x.test/uploads/a.pdf", FileURL("https://x.test/", "uploads/a.pdf"))
	require.Equal(t, "https://x.test/uploads/a.pdf", FileURL("https://x.test", "uploads/a.pdf"))
	require.Equal(t, "/api/uploads/a.pdf", FileURL("/api", "uploads/a.pdf"))
}

func TestGetSuggestions(t *testing.T) {
	e := setupTest(t)
	store := suggest.NewStore(database.GetDB())
	ctx := httptest.NewRequest(http.MethodGet, "/", nil).Context()
	for i := 0; i < 3; i++ {
		require.NoError(t, store.RecordUsage(ctx, suggest.FieldPier, "Rassada Pier"))
	}
	require.NoError(t, store.RecordUsage(ctx, suggest.FieldPier, "Railay Pier"))

	type suggestResponse struct {
		Suggestions []suggest.Item `json:"suggestions"`
	}

	t.Run("short query returns empty", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/suggestions?type=pier&q=r", nil)
		rec := httptest.NewRecorder()
		require.NoError(t, GetSuggestions(e.NewContext(req, rec)))
		require.Equal(t, http.StatusOK, rec.Code)

		var resp suggestResponse
		decodeBody(t, rec, &resp)
		require.Empty(t, resp.Suggestions)
	})

	t.Run("results ordered by usage", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/suggestions?type=pier&q=ra", nil)
		rec := httptest.NewRecorder()
		require.NoError(t, GetSuggestions(e.NewContext(req, rec)))
		require.Equal(t, http.StatusOK, rec.Code)

		var resp suggestResponse
		decodeBody(t, rec, &resp)
		require.Len(t, resp.Suggestions, 2)
		require.Equal(t, "Rassada Pier", resp.Suggestions[0].Value)
	})

	t.Run("missing field returns empty", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/suggestions?q=rassada", nil)
		rec := httptest.NewRecorder()
		require.NoError(t, GetSuggestions(e.NewContext(req, rec)))
		require.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestGetCategories(t *testing.T) {
	e := setupTest(t)

	t.Run("tour registry", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/categories/tour", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("kind")
		c.SetParamValues("tour")
		require.NoError(t, GetCategories(c))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), "brochure")
	})

	t.Run("unknown kind", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/categories/warehouse", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("kind")
		c.SetParamValues("warehouse")
		require.NoError(t, GetCategories(c))
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
