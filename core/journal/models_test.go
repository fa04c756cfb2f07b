package journal

import "testing"

func TestParseWorkText(t *testing.T) {
	tests := []struct {
		name        string
		in          string
		wantStatus  Status
		wantInterro bool
		wantText    string
	}{
		{name: "plain", in: "Correction des exercices p.42", wantStatus: StatusGiven, wantText: "Correction des exercices p.42"},
		{name: "empty", in: "", wantStatus: StatusGiven},
		{name: "cancelled", in: "[CANCELLED] Grève", wantStatus: StatusCancelled, wantText: "Grève"},
		{name: "exam", in: "[EXAM] Sujet : fractions", wantStatus: StatusExam, wantText: "Sujet : fractions"},
		{name: "holiday", in: "[HOLIDAY] Férié", wantStatus: StatusHoliday, wantText: "Férié"},
		{name: "bare tag", in: "[CANCELLED]", wantStatus: StatusCancelled},
		{name: "interro", in: "[INTERRO] Tables de multiplication", wantStatus: StatusGiven, wantInterro: true, wantText: "Tables de multiplication"},
		{name: "status and interro", in: "[EXAM] [INTERRO] Sujet : fractions", wantStatus: StatusExam, wantInterro: true, wantText: "Sujet : fractions"},
		{name: "tag not at start stays text", in: "voir [CANCELLED] plus haut", wantStatus: StatusGiven, wantText: "voir [CANCELLED] plus haut"},
		{name: "surrounding spaces", in: "  [HOLIDAY]  Toussaint  ", wantStatus: StatusHoliday, wantText: "Toussaint"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, interro, text := ParseWorkText(tt.in)
			if status != tt.wantStatus || interro != tt.wantInterro || text != tt.wantText {
				t.Errorf("ParseWorkText(%q) = (%v, %v, %q), want (%v, %v, %q)",
					tt.in, status, interro, text, tt.wantStatus, tt.wantInterro, tt.wantText)
			}
		})
	}
}

func TestFormatWorkText(t *testing.T) {
	tests := []struct {
		name    string
		status  Status
		interro bool
		text    string
		want    string
	}{
		{name: "plain", status: StatusGiven, text: "Exercices p.42", want: "Exercices p.42"},
		{name: "empty given", status: StatusGiven, want: ""},
		{name: "cancelled", status: StatusCancelled, text: "Grève", want: "[CANCELLED] Grève"},
		{name: "holiday bare", status: StatusHoliday, want: "[HOLIDAY]"},
		{name: "exam with interro", status: StatusExam, interro: true, text: "Sujet : fractions", want: "[EXAM] [INTERRO] Sujet : fractions"},
		{name: "interro only", status: StatusGiven, interro: true, text: "Tables", want: "[INTERRO] Tables"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatWorkText(tt.status, tt.interro, tt.text); got != tt.want {
				t.Errorf("FormatWorkText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatWorkText_roundTrip(t *testing.T) {
	for _, status := range []Status{StatusGiven, StatusCancelled, StatusExam, StatusHoliday} {
		for _, interro := range []bool{false, true} {
			s := FormatWorkText(status, interro, "Révision chapitre 3")
			gotStatus, gotInterro, gotText := ParseWorkText(s)
			if gotStatus != status || gotInterro != interro || gotText != "Révision chapitre 3" {
				t.Errorf("round trip %v/%v: got %v/%v/%q", status, interro, gotStatus, gotInterro, gotText)
			}
		}
	}
}
