package mailbox

import (
	"strings"
	"testing"
)

func buildMessage(attachmentName, attachmentBody string) string {
	var b strings.Builder
	b.WriteString("From: sender@example.com\r\n")
	b.WriteString("To: ingest@example.com\r\n")
	b.WriteString("Subject: Q3 premium bordereau\r\n")
	b.WriteString("Content-Type: multipart/mixed; boundary=BOUNDARY\r\n\r\n")
	b.WriteString("--BOUNDARY\r\n")
	b.WriteString("Content-Type: text/plain\r\n\r\n")
	b.WriteString("see attached\r\n")
	b.WriteString("--BOUNDARY\r\n")
	b.WriteString("Content-Type: application/octet-stream\r\n")
	b.WriteString("Content-Disposition: attachment; filename=\"" + attachmentName + "\"\r\n")
	b.WriteString("Content-Transfer-Encoding: 7bit\r\n\r\n")
	b.WriteString(attachmentBody + "\r\n")
	b.WriteString("--BOUNDARY--\r\n")
	return b.String()
}

func TestExtractAttachmentsAllowList(t *testing.T) {
	raw := []byte(buildMessage("premium_q3.csv", "policy_number,premium_amount\nP-1,100"))

	got, err := extractAttachments(raw, []string{"csv", "xlsx"})
	if err != nil {
		t.Fatalf("extractAttachments: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 attachment, got %d", len(got))
	}
	if got[0].Filename != "premium_q3.csv" {
		t.Fatalf("unexpected filename %q", got[0].Filename)
	}
}

func TestExtractAttachmentsRejectsDisallowedExtension(t *testing.T) {
	raw := []byte(buildMessage("malware.exe", "not a bordereau"))

	got, err := extractAttachments(raw, []string{"csv", "xlsx"})
	if err != nil {
		t.Fatalf("extractAttachments: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected 0 attachments, got %d", len(got))
	}
}

func TestExtOf(t *testing.T) {
	tests := []struct{ name, want string }{
		{"report.CSV", "csv"},
		{"data.tar.gz", "gz"},
		{"noext", ""},
	}
	for _, tc := range tests {
		if got := extOf(tc.name); got != tc.want {
			t.Errorf("extOf(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}
