package handler

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mmeshcher/storefront/internal/catalog"
)

func gzipBytes(t *testing.T, data string) []byte {
	t.Helper()

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write([]byte(data)); err != nil {
		t.Fatalf("write gzip: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("close gzip: %v", err)
	}
	return buf.Bytes()
}

func TestRouter_Gzip(t *testing.T) {
	type want struct {
		statusCode      int
		contentEncoding string
	}

	tests := []struct {
		name       string
		method     string
		target     string
		body       []byte
		compressed bool
		acceptGzip bool
		want       want
		check      func(t *testing.T, body []byte, svc *stubService)
	}{
		{
			name:       "compressed add to cart",
			method:     http.MethodPost,
			target:     "/api/cart/items",
			body:       gzipBytes(t, `{"product_id":3}`),
			compressed: true,
			acceptGzip: true,
			want: want{
				statusCode:      http.StatusOK,
				contentEncoding: "gzip",
			},
			check: func(t *testing.T, body []byte, svc *stubService) {
				if svc.lastProductID != 3 {
					t.Fatalf("product id = %d, want 3", svc.lastProductID)
				}
				var resp cartResponse
				if err := json.Unmarshal(body, &resp); err != nil {
					t.Fatalf("decode cart: %v", err)
				}
				if resp.Lines != 2 {
					t.Fatalf("lines = %d, want 2", resp.Lines)
				}
			},
		},
		{
			name:       "compressed add to cart, plain response",
			method:     http.MethodPost,
			target:     "/api/cart/items",
			body:       gzipBytes(t, `{"product_id":5}`),
			compressed: true,
			want: want{
				statusCode: http.StatusOK,
			},
			check: func(t *testing.T, body []byte, svc *stubService) {
				if svc.lastProductID != 5 {
					t.Fatalf("product id = %d, want 5", svc.lastProductID)
				}
			},
		},
		{
			name:       "corrupt compressed body",
			method:     http.MethodPost,
			target:     "/api/cart/items",
			body:       []byte(`{"product_id":3}`),
			compressed: true,
			want: want{
				statusCode: http.StatusBadRequest,
			},
			check: func(t *testing.T, body []byte, svc *stubService) {
				if svc.lastProductID != 0 {
					t.Fatalf("handler must not run, got product id %d", svc.lastProductID)
				}
			},
		},
		{
			name:       "products with gzip response",
			method:     http.MethodGet,
			target:     "/api/products",
			acceptGzip: true,
			want: want{
				statusCode:      http.StatusOK,
				contentEncoding: "gzip",
			},
			check: func(t *testing.T, body []byte, svc *stubService) {
				var resp []productResponse
				if err := json.Unmarshal(body, &resp); err != nil {
					t.Fatalf("decode products: %v", err)
				}
				if len(resp) != 6 {
					t.Fatalf("len = %d, want 6", len(resp))
				}
				if resp[3].Name != "Ноутбук UltraBook" || resp[3].Price.String() != "89990" {
					t.Fatalf("unexpected product: %+v", resp[3])
				}
			},
		},
		{
			name:   "products without gzip",
			method: http.MethodGet,
			target: "/api/products",
			want: want{
				statusCode: http.StatusOK,
			},
			check: func(t *testing.T, body []byte, svc *stubService) {
				if !strings.Contains(string(body), "Камера Zoom 4K") {
					t.Fatalf("body %q does not contain product name", string(body))
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{
				products: catalog.DefaultProducts(),
				state:    sampleState(),
			}
			h := newTestHandler(t, svc, "")

			req := httptest.NewRequest(tt.method, tt.target, bytes.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			if tt.compressed {
				req.Header.Set("Content-Encoding", "gzip")
			}
			if tt.acceptGzip {
				req.Header.Set("Accept-Encoding", "gzip")
			}

			w := httptest.NewRecorder()
			h.SetupRouter(nil).ServeHTTP(w, req)

			res := w.Result()
			defer res.Body.Close()

			if res.StatusCode != tt.want.statusCode {
				t.Fatalf("status: got %d want %d", res.StatusCode, tt.want.statusCode)
			}

			if ce := res.Header.Get("Content-Encoding"); ce != tt.want.contentEncoding {
				t.Fatalf("content-encoding: got %q want %q", ce, tt.want.contentEncoding)
			}

			var reader io.Reader = res.Body
			if res.Header.Get("Content-Encoding") == "gzip" {
				gr, err := gzip.NewReader(res.Body)
				if err != nil {
					t.Fatalf("new gzip reader: %v", err)
				}
				defer gr.Close()
				reader = gr
			}

			body, err := io.ReadAll(reader)
			if err != nil {
				t.Fatalf("read body: %v", err)
			}

			tt.check(t, body, svc)
		})
	}
}
