//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/staffdir/apiserver/config"
	"github.com/staffdir/apiserver/internal/server"
)

const (
	serverPort    = 18080
	adminUsername = "admin"
	adminPassword = "adminPassword123!"
)

func TestMain(m *testing.M) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	root, err := repoRoot()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to locate repo root: %v\n", err)
		os.Exit(1)
	}

	if err := dockerCompose(ctx, root, "up", "-d"); err != nil {
		fmt.Fprintf(os.Stderr, "failed to start docker compose: %v\n", err)
		os.Exit(1)
	}

	os.Setenv("SERVER_PORT", fmt.Sprintf("%d", serverPort))
	os.Setenv("JWT_SECRET", "e2e-test-secret")
	os.Setenv("UPLOADS_DIR", filepath.Join(os.TempDir(), fmt.Sprintf("staffdir-e2e-%d", time.Now().UnixNano())))

	if err := waitForPostgres(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "postgres not ready: %v\n", err)
		_ = dockerCompose(context.Background(), root, "down")
		os.Exit(1)
	}

	if err := runMigrations(root); err != nil {
		fmt.Fprintf(os.Stderr, "failed to run migrations: %v\n", err)
		_ = dockerCompose(context.Background(), root, "down")
		os.Exit(1)
	}

	srv, err := startServer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start server: %v\n", err)
		_ = dockerCompose(context.Background(), root, "down")
		os.Exit(1)
	}

	baseURL := fmt.Sprintf("http://localhost:%d", serverPort)
	if err := waitForHealth(ctx, baseURL+"/healthz"); err != nil {
		fmt.Fprintf(os.Stderr, "server not healthy: %v\n", err)
		_ = srv.Shutdown()
		_ = dockerCompose(context.Background(), root, "down")
		os.Exit(1)
	}

	code := m.Run()

	_ = srv.Shutdown()
	_ = dockerCompose(context.Background(), root, "down")
	os.Exit(code)
}

func TestContactLifecycle(t *testing.T) {
	baseURL := fmt.Sprintf("http://localhost:%d", serverPort)

	token, err := login(t, baseURL, adminUsername, adminPassword)
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	created, err := createContact(t, baseURL, token)
	if err != nil {
		t.Fatalf("create contact: %v", err)
	}
	if created.ID == 0 {
		t.Fatalf("expected contact ID to be set")
	}
	if created.Name != "Ada" {
		t.Fatalf("unexpected contact name: %q", created.Name)
	}
	if created.ImagePath == nil || !strings.HasSuffix(*created.ImagePath, ".png") {
		t.Fatalf("expected a png image path, got %v", created.ImagePath)
	}

	if err := fetchImage(t, baseURL, *created.ImagePath); err != nil {
		t.Fatalf("fetch image: %v", err)
	}

	updated, err := updateContactPosition(t, baseURL, token, created.ID, "2")
	if err != nil {
		t.Fatalf("update contact: %v", err)
	}
	if updated.Position != "2" {
		t.Fatalf("unexpected position: %q", updated.Position)
	}
	if updated.ImagePath == nil || *updated.ImagePath != *created.ImagePath {
		t.Fatalf("image path changed on field-only update")
	}

	contacts, err := listContacts(t, baseURL)
	if err != nil {
		t.Fatalf("list contacts: %v", err)
	}
	if len(contacts) == 0 {
		t.Fatalf("expected at least one contact in listing")
	}

	if err := deleteContact(t, baseURL, token, created.ID); err != nil {
		t.Fatalf("delete contact: %v", err)
	}

	if err := expectContactNotFound(t, baseURL, token, created.ID); err != nil {
		t.Fatalf("expected deleted contact to be missing: %v", err)
	}
}

type contactResponse struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	Position  string  `json:"position"`
	ImagePath *string `json:"image"`
}

type authResponse struct {
	Token string `json:"token"`
}

func login(t *testing.T, baseURL, username, password string) (string, error) {
	t.Helper()

	payload := map[string]string{"username": username, "password": password}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	resp, err := http.Post(baseURL+"/api/login", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("login status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var parsed authResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}
	if parsed.Token == "" {
		return "", fmt.Errorf("missing token in login response")
	}
	return parsed.Token, nil
}

func createContact(t *testing.T, baseURL, token string) (contactResponse, error) {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	_ = writer.WriteField("name", "Ada")
	_ = writer.WriteField("position", "1")
	_ = writer.WriteField("designation", "Engineer")

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="image"; filename="photo.png"`)
	header.Set("Content-Type", "image/png")
	part, err := writer.CreatePart(header)
	if err != nil {
		return contactResponse{}, err
	}
	if _, err := part.Write([]byte("fake png bytes")); err != nil {
		return contactResponse{}, err
	}
	if err := writer.Close(); err != nil {
		return contactResponse{}, err
	}

	req, err := http.NewRequest(http.MethodPost, baseURL+"/api/contacts", &body)
	if err != nil {
		return contactResponse{}, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return contactResponse{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(resp.Body)
		return contactResponse{}, fmt.Errorf("create status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var parsed contactResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return contactResponse{}, err
	}
	return parsed, nil
}

func updateContactPosition(t *testing.T, baseURL, token string, id int, position string) (contactResponse, error) {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	_ = writer.WriteField("position", position)
	if err := writer.Close(); err != nil {
		return contactResponse{}, err
	}

	req, err := http.NewRequest(http.MethodPut, fmt.Sprintf("%s/api/contacts/%d", baseURL, id), &body)
	if err != nil {
		return contactResponse{}, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return contactResponse{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return contactResponse{}, fmt.Errorf("update status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var parsed contactResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return contactResponse{}, err
	}
	return parsed, nil
}

func listContacts(t *testing.T, baseURL string) ([]contactResponse, error) {
	t.Helper()

	resp, err := http.Get(baseURL + "/api/contacts")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list status %d", resp.StatusCode)
	}

	var parsed []contactResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	return parsed, nil
}

func fetchImage(t *testing.T, baseURL, imagePath string) error {
	t.Helper()

	resp, err := http.Get(baseURL + imagePath)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("image status %d", resp.StatusCode)
	}
	return nil
}

func deleteContact(t *testing.T, baseURL, token string, id int) error {
	t.Helper()

	req, err := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/api/contacts/%d", baseURL, id), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("delete status %d", resp.StatusCode)
	}
	return nil
}

func expectContactNotFound(t *testing.T, baseURL, token string, id int) error {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, fmt.Sprintf("%s/api/contacts/%d", baseURL, id), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("expected 404, got %d", resp.StatusCode)
	}
	return nil
}

func startServer() (*server.Server, error) {
	cfg := config.LoadConfig()
	srv, err := server.New(context.Background(), cfg)
	if err != nil {
		return nil, err
	}
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		}
	}()
	return srv, nil
}

func waitForHealth(ctx context.Context, healthURL string) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		resp, err := http.Get(healthURL)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(500 * time.Millisecond)
	}
}

func waitForPostgres(ctx context.Context) error {
	cfg := config.LoadConfig()
	dsn := buildPostgresURL(cfg)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		db, err := sql.Open("postgres", dsn)
		if err == nil {
			pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
			err = db.PingContext(pingCtx)
			cancel()
			_ = db.Close()
			if err == nil {
				return nil
			}
		}
		time.Sleep(500 * time.Millisecond)
	}
}

func runMigrations(root string) error {
	cfg := config.LoadConfig()
	dsn := buildPostgresURL(cfg)

	migrationsURL := "file://" + filepath.Join(root, "internal", "db", "migrations")
	migrator, err := migrate.New(migrationsURL, dsn)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = migrator.Close()
	}()

	if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func buildPostgresURL(cfg config.Config) string {
	sslmode := "disable"
	if cfg.Database.UseSSL {
		sslmode = "require"
	}

	u := &url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", cfg.Database.Host, cfg.Database.Port),
		User:   url.UserPassword(cfg.Database.User, cfg.Database.Password),
		Path:   cfg.Database.DBName,
	}
	q := u.Query()
	q.Set("sslmode", sslmode)
	u.RawQuery = q.Encode()
	return u.String()
}

func dockerCompose(ctx context.Context, dir string, args ...string) error {
	cmd := exec.CommandContext(ctx, "docker", append([]string{"compose"}, args...)...)
	cmd.Dir = dir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func repoRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod not found above %s", dir)
		}
		dir = parent
	}
}
