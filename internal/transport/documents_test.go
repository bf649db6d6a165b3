package transport_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cxde-rxnin/carekeep/internal/transport"
)

func TestUploadDocumentMultipartFields(t *testing.T) {
	var gotPatientID, gotCustomName, gotFileName, gotContent string
	var hadCustomName bool

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		gotPatientID = r.FormValue("patientId")
		_, hadCustomName = r.MultipartForm.Value["customName"]
		gotCustomName = r.FormValue("customName")

		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		defer f.Close()
		gotFileName = hdr.Filename
		buf := make([]byte, hdr.Size)
		f.Read(buf)
		gotContent = string(buf)

		w.Write([]byte(`{"_id":"d1","patientId":"p1","fileName":"scan.pdf"}`))
	}))
	defer srv.Close()

	c := transport.New(srv.URL, authedSession("t1"), nil, discard)
	doc, err := c.UploadDocument(context.Background(), "p1", "scan.pdf", strings.NewReader("pdf-bytes"), "MRI Scan")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPatientID != "p1" {
		t.Errorf("patientId = %q, want p1", gotPatientID)
	}
	if !hadCustomName || gotCustomName != "MRI Scan" {
		t.Errorf("customName = %q (present=%v), want MRI Scan", gotCustomName, hadCustomName)
	}
	if gotFileName != "scan.pdf" {
		t.Errorf("filename = %q, want scan.pdf", gotFileName)
	}
	if gotContent != "pdf-bytes" {
		t.Errorf("content = %q", gotContent)
	}
	if doc.ID != "d1" {
		t.Errorf("doc ID = %q, want d1", doc.ID)
	}
}

func TestUploadDocumentOmitsEmptyCustomName(t *testing.T) {
	var hadCustomName bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		_, hadCustomName = r.MultipartForm.Value["customName"]
		w.Write([]byte(`{"_id":"d1"}`))
	}))
	defer srv.Close()

	c := transport.New(srv.URL, authedSession("t1"), nil, discard)
	if _, err := c.UploadDocument(context.Background(), "p1", "scan.pdf", strings.NewReader("x"), ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if hadCustomName {
		t.Error("empty customName must be omitted so the server names the file")
	}
}

func TestPatientDocumentsPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/documents/patient/p1" {
			t.Errorf("path = %s, want /documents/patient/p1", r.URL.Path)
		}
		w.Write([]byte(`[{"_id":"d1","fileName":"scan.pdf"}]`))
	}))
	defer srv.Close()

	c := transport.New(srv.URL, authedSession("t1"), nil, discard)
	docs, err := c.PatientDocuments(context.Background(), "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 1 || docs[0].FileName != "scan.pdf" {
		t.Errorf("docs = %+v", docs)
	}
}
