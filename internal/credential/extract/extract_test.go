package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"credanchor/internal/credential/models"
	"credanchor/pkg/domain"
	dErrors "credanchor/pkg/domain-errors"
)

const testOwner = domain.DID("did:anchor:wallet123")

func TestCredentialsExtractsEducationEntry(t *testing.T) {
	text := "Education\nBachelor of Science in CS, MIT University, 2016-2020"

	records := Credentials(text, testOwner)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, models.TypeEducation, rec.Type)
	assert.Equal(t, testOwner, rec.OwnerDID)
	assert.Contains(t, rec.Issuer, "MIT University")
	assert.Contains(t, rec.Title, "Bachelor")
	assert.Equal(t, "2016", rec.StartDate)
	assert.Equal(t, "2020", rec.EndDate)
	assert.False(t, rec.ID.IsNil())
}

func TestCredentialsIsDeterministicUpToIDs(t *testing.T) {
	text := "Education\nBachelor of Science, MIT University, 2016-2020\n" +
		"Experience\nSoftware Engineer at Acme Company, 2020-2023"

	first := Credentials(text, testOwner)
	second := Credentials(text, testOwner)
	require.Len(t, first, 2)
	require.Len(t, second, 2)

	for i := range first {
		a, b := first[i], second[i]
		assert.Equal(t, a.Type, b.Type)
		assert.Equal(t, a.Issuer, b.Issuer)
		assert.Equal(t, a.Title, b.Title)
		assert.Equal(t, a.StartDate, b.StartDate)
		assert.Equal(t, a.EndDate, b.EndDate)
		assert.NotEqual(t, a.ID, b.ID, "each extraction run mints fresh IDs")
	}
}

func TestCredentialsSectionRouting(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantType models.CredentialType
	}{
		{
			name:     "education section",
			text:     "Academic Background\nBSc, Stanford University, 2015",
			wantType: models.TypeEducation,
		},
		{
			name:     "work section",
			text:     "Employment History\nBackend Developer, Initech Inc, 2019-2022",
			wantType: models.TypeWork,
		},
		{
			name:     "project section",
			text:     "Projects\nLedger explorer dashboard, 2021",
			wantType: models.TypeProject,
		},
		{
			name:     "certification section",
			text:     "Certifications\nAWS Solutions Architect Associate, 2023",
			wantType: models.TypeCertification,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := Credentials(tt.text, testOwner)
			require.Len(t, records, 1)
			assert.Equal(t, tt.wantType, records[0].Type)
		})
	}
}

func TestCredentialsHeaderKeywordPrecedence(t *testing.T) {
	// "work experience certificate" matches several section keywords; the
	// education group is checked first, then work, so this routes to work.
	text := "Work Experience Certificate\nSenior Engineer, Globex Company, 2018"

	records := Credentials(text, testOwner)
	require.Len(t, records, 1)
	assert.Equal(t, models.TypeWork, records[0].Type)
}

func TestCredentialsSkipsNonCandidateLines(t *testing.T) {
	text := "Education\n" +
		"I enjoy rowing and chess.\n" + // no year, no institution keyword
		"\n" +
		"BSc Physics, Oxford University, 2014-2017"

	records := Credentials(text, testOwner)
	require.Len(t, records, 1)
	assert.Contains(t, records[0].Issuer, "Oxford University")
}

func TestCredentialsIgnoresLinesBeforeAnySection(t *testing.T) {
	text := "Jane Doe, born 1990\nEducation\nBA History, Yale University, 2010-2014"

	records := Credentials(text, testOwner)
	require.Len(t, records, 1)
	assert.Equal(t, "2010", records[0].StartDate)
}

func TestCredentialsSectionHeaderWithYearIsNotADataLine(t *testing.T) {
	text := "Education 2020\nMSc AI, ETH University, 2021-2023"

	records := Credentials(text, testOwner)
	require.Len(t, records, 1)
	assert.Equal(t, "2021", records[0].StartDate)
}

func TestCredentialsSingleYearServesAsBothDates(t *testing.T) {
	text := "Certifications\nCertified Kubernetes Administrator, 2022"

	records := Credentials(text, testOwner)
	require.Len(t, records, 1)
	assert.Equal(t, "2022", records[0].StartDate)
	assert.Equal(t, "2022", records[0].EndDate)
}

func TestCredentialsFullDatesAreKept(t *testing.T) {
	text := "Experience\nPlatform Engineer, Hooli Inc, 2019-03-01 2021-06-30"

	records := Credentials(text, testOwner)
	require.Len(t, records, 1)
	assert.Equal(t, "2019-03-01", records[0].StartDate)
	assert.Equal(t, "2021-06-30", records[0].EndDate)
}

func TestCredentialsIssuerFallbacks(t *testing.T) {
	t.Run("capitalized words without institution keyword", func(t *testing.T) {
		text := "Projects\nBuilt Orbit Tracker for NASA in 2020"
		records := Credentials(text, testOwner)
		require.Len(t, records, 1)
		assert.Equal(t, "Built Orbit Tracker", records[0].Issuer)
	})

	t.Run("no capitalized words at all", func(t *testing.T) {
		text := "Projects\nbuilt a compiler in 2019"
		records := Credentials(text, testOwner)
		require.Len(t, records, 1)
		assert.Equal(t, "Unknown", records[0].Issuer)
	})
}

func TestCredentialsTitleFallsBackToLeadingWords(t *testing.T) {
	text := "Projects\nOpen source compiler backend, 2021"

	records := Credentials(text, testOwner)
	require.Len(t, records, 1)
	assert.Equal(t, "Open source compiler backend,", records[0].Title)
}

func TestCredentialsEmptyInputYieldsNoRecords(t *testing.T) {
	assert.Empty(t, Credentials("", testOwner))
	assert.Empty(t, Credentials("just some prose with no sections", testOwner))
	assert.Empty(t, Credentials("Education\n", testOwner))
}

func TestTextAcceptsPlainFormats(t *testing.T) {
	for _, format := range []string{"txt", "md", ".txt", "TXT", ".MD"} {
		got, err := Text([]byte("hello"), format)
		require.NoError(t, err, format)
		assert.Equal(t, "hello", got)
	}
}

func TestTextRejectsUnsupportedFormats(t *testing.T) {
	for _, format := range []string{"pdf", "docx", "", ".png"} {
		_, err := Text([]byte("hello"), format)
		require.Error(t, err, format)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	}
}

func TestTextRejectsInvalidUTF8(t *testing.T) {
	_, err := Text([]byte{0xff, 0xfe, 0xfd}, "txt")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}
