package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	api "github.com/brightprep/brightprep-erp/internal/api/http"
	auth "github.com/brightprep/brightprep-erp/internal/auth/middleware"
	"github.com/brightprep/brightprep-erp/internal/config"
	"github.com/brightprep/brightprep-erp/internal/db"
	"github.com/brightprep/brightprep-erp/internal/directory"
	"github.com/brightprep/brightprep-erp/internal/exam"
	"github.com/brightprep/brightprep-erp/internal/finance"
	"github.com/brightprep/brightprep-erp/internal/notify"
	"github.com/brightprep/brightprep-erp/internal/rbac"
	"github.com/brightprep/brightprep-erp/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}

	examStore := exam.NewSQLStore(dbh, cfg.DBDriver)
	feeStore := finance.NewSQLStore(dbh)
	dirStore := directory.NewSQLStore(dbh)
	noticeStore := notify.NewSQLStore(dbh)

	var sender notify.Sender
	if ps := notify.NewWebPushSender(cfg.Push.Subject, cfg.Push.VAPIDPublicKey, cfg.Push.VAPIDPrivateKey); ps.Configured() {
		sender = ps
	} else {
		log.Println("VAPID keys not configured, push dispatch disabled")
	}
	noticeSvc := notify.NewService(noticeStore, sender)

	bs, err := storage.NewFSStore(cfg.BlobBasePath)
	if err != nil {
		log.Fatalf("blob store: %v", err)
	}

	// --- Auth ---
	authSvc := auth.NewAuthService(cfg.AuthSecret, time.Duration(cfg.TokenTTLHour)*time.Hour)
	checker := rbac.NewChecker(nil)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", auth.LoginHandler(authSvc, dbh))

	// Protected API (JWT -> role in context -> RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))

		// Users
		pr.With(rbac.Require("users:bulk_upsert")).
			Post("/users/bulk", api.BulkUpsertUsersHandler(dbh))
		pr.With(rbac.Require("users:list")).
			Get("/users", api.ListUsersHandler(dbh))
		pr.With(rbac.Require("user:change_password")).
			Post("/users/change-password", api.ChangePasswordHandler(dbh))

		// Exams + attempts (student surface)
		pr.With(rbac.Require("exam:view")).
			Get("/exams", api.ListExamsHandler(examStore))
		pr.With(rbac.Require("exam:view")).
			Get("/exams/{examID}", api.GetExamHandler(examStore, checker))
		pr.With(rbac.Require("attempt:start")).
			Post("/exams/{examID}/attempt", api.StartAttemptHandler(examStore))
		pr.With(rbac.Require("attempt:submit")).
			Post("/exams/{examID}/submit", api.SubmitAttemptHandler(examStore))
		pr.With(rbac.RequireAny("attempt:view-own", "attempt:view-child")).
			Get("/exams/{examID}/result", api.MyResultHandler(examStore, dirStore, checker))
		pr.With(rbac.RequireAny("attempt:view-own", "attempt:view-child", "attempt:view-all")).
			Get("/attempts", api.ListAttemptsHandler(examStore, dirStore, checker))
		pr.With(rbac.RequireAny("attempt:view-own", "attempt:view-child", "attempt:view-all")).
			Get("/attempts/{attemptID}/answers", api.AttemptAnswersHandler(examStore, dirStore, checker))
		pr.With(rbac.Require("attempt:grade")).
			Post("/attempts/{attemptID}/marks", api.EnterManualMarksHandler(examStore))

		// Exam authoring (teacher/admin surface)
		pr.With(rbac.Require("exam:create")).
			Post("/erp/exams", api.CreateExamHandler(examStore))
		pr.With(rbac.Require("exam:create")).
			Post("/erp/exams/{examID}/import", api.ImportQuestionsHandler(examStore))

		// Question bank
		pr.With(rbac.Require("bank:create")).
			Post("/erp/question-bank", api.CreateBankQuestionHandler(examStore))
		pr.With(rbac.Require("bank:update")).
			Put("/erp/question-bank/{questionID}", api.UpdateBankQuestionHandler(examStore))
		pr.With(rbac.Require("bank:view")).
			Get("/erp/question-bank", api.ListBankQuestionsHandler(examStore))
		pr.With(rbac.Require("bank:delete")).
			Delete("/erp/question-bank/{questionID}", api.DeleteBankQuestionHandler(examStore))

		// Directory
		pr.With(rbac.Require("directory:manage")).
			Post("/erp/batches", api.CreateBatchHandler(dirStore))
		pr.With(rbac.Require("directory:view")).
			Get("/erp/batches", api.ListBatchesHandler(dirStore))
		pr.With(rbac.Require("directory:manage")).
			Post("/erp/students", api.CreateStudentHandler(dirStore))
		pr.With(rbac.Require("directory:view")).
			Get("/erp/students", api.ListStudentsHandler(dirStore))
		pr.With(rbac.Require("directory:view")).
			Get("/erp/students/{studentID}", api.GetStudentHandler(dirStore))
		pr.With(rbac.Require("directory:manage")).
			Put("/erp/students/{studentID}", api.UpdateStudentHandler(dirStore))
		pr.With(rbac.Require("directory:manage")).
			Post("/erp/parents", api.CreateParentHandler(dirStore))
		pr.With(rbac.Require("directory:view")).
			Get("/erp/parents", api.ListParentsHandler(dirStore))
		pr.With(rbac.Require("directory:manage")).
			Post("/erp/teachers", api.CreateTeacherHandler(dirStore))
		pr.With(rbac.Require("directory:view")).
			Get("/erp/teachers", api.ListTeachersHandler(dirStore))

		// Expenses
		pr.With(rbac.Require("expense:manage")).
			Post("/erp/expenses", api.AddExpenseHandler(dirStore))
		pr.With(rbac.Require("expense:manage")).
			Get("/erp/expenses", api.ListExpensesHandler(dirStore))

		// Enquiries (front desk)
		pr.With(rbac.Require("enquiry:create")).
			Post("/erp/enquiries", api.CreateEnquiryHandler(dirStore))
		pr.With(rbac.Require("enquiry:view")).
			Get("/erp/enquiries", api.ListEnquiriesHandler(dirStore))

		// Attendance
		pr.With(rbac.Require("attendance:mark")).
			Post("/erp/attendance", api.MarkAttendanceHandler(dirStore))
		pr.With(rbac.Require("attendance:view")).
			Get("/erp/students/{studentID}/attendance", api.StudentAttendanceHandler(dirStore))

		// Resources
		pr.With(rbac.Require("resource:create")).
			Post("/erp/resources", api.UploadResourceHandler(dirStore, bs))
		pr.With(rbac.Require("resource:view")).
			Get("/erp/resources", api.ListResourcesHandler(dirStore))
		pr.With(rbac.Require("resource:view")).
			Get("/erp/resources/{resourceID}/file", api.DownloadResourceHandler(dirStore, bs))

		// Finance
		pr.With(rbac.Require("finance:collect")).
			Post("/finance/collect", api.CollectFeeHandler(feeStore))
		pr.With(rbac.RequireAny("finance:view-own", "finance:view-child")).
			Get("/finance/my-summary", api.MyFeeSummaryHandler(feeStore))
		pr.With(rbac.RequireAny("finance:view-all", "finance:view-child")).
			Get("/finance/students/{studentID}/summary", api.StudentFeeSummaryHandler(feeStore, dirStore, checker))
		pr.With(rbac.Require("finance:view-all")).
			Get("/finance/students/{studentID}/records", api.StudentFeeRecordsHandler(feeStore))

		// Audit trail
		pr.With(rbac.Require("audit:view")).
			Get("/erp/events", api.RecentEventsHandler(dbh))

		// Notices + push
		pr.With(rbac.Require("notice:create")).
			Post("/notices", api.CreateNoticeHandler(noticeSvc))
		pr.With(rbac.Require("notice:view")).
			Get("/notices", api.ListNoticesHandler(noticeStore))
		pr.With(rbac.Require("push:subscribe")).
			Post("/push/subscribe", api.SubscribePushHandler(noticeStore))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := dbh.PingContext(r.Context()); err != nil {
			http.Error(w, "db unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(200)
	})

	log.Printf("listening on %s (db=%s)", cfg.HTTPAddr, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
