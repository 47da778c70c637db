package normalize

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/kilianp07/sessionplanner/core/model"
)

func validForm() FormInput {
	f := DefaultForm("San Francisco")
	f.Address.Street = "1 Market St"
	f.Address.Zip = "94105"
	return f
}

func newNormalizer(t *testing.T, p RangePolicy) *Normalizer {
	t.Helper()
	n, err := New(p)
	require.NoError(t, err)
	return n
}

func TestNormalize_Defaults(t *testing.T) {
	res, err := newNormalizer(t, PolicyReject).Normalize(validForm())
	require.NoError(t, err)
	req := res.Request
	assert.Equal(t, 4, req.MaxClientsPerDay)
	assert.Equal(t, 2.0, req.SessionDurationHours)
	assert.Len(t, req.Availabilities, 5)
	assert.Equal(t, "CA", req.Address.State)
	assert.Empty(t, res.Warnings)
}

func TestNormalize_CoercesStringsAndTimes(t *testing.T) {
	f := validForm()
	f.MaxClientsPerDay = " 6 "
	f.SessionDurationHours = "2.5"
	f.Availabilities = []AvailabilityInput{{Day: "3", Start: "9:00 AM", End: "4:30 PM"}}
	res, err := newNormalizer(t, PolicyReject).Normalize(f)
	require.NoError(t, err)
	assert.Equal(t, 6, res.Request.MaxClientsPerDay)
	assert.Equal(t, 2.5, res.Request.SessionDurationHours)
	assert.Equal(t, []model.Availability{{Day: 3, Start: "09:00", End: "16:30"}}, res.Request.Availabilities)
}

func TestNormalize_RejectsOutOfRange(t *testing.T) {
	f := validForm()
	f.MaxClientsPerDay = "11"
	f.SessionDurationHours = "1.25"
	_, err := newNormalizer(t, PolicyReject).Normalize(f)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "max_clients_per_day")
	assert.Contains(t, verr.Fields, "session_duration_hours")
}

func TestNormalize_ClampPolicy(t *testing.T) {
	f := validForm()
	f.MaxClientsPerDay = "42"
	f.SessionDurationHours = "1.3"
	res, err := newNormalizer(t, PolicyClamp).Normalize(f)
	require.NoError(t, err)
	assert.Equal(t, 10, res.Request.MaxClientsPerDay)
	assert.Equal(t, 1.5, res.Request.SessionDurationHours)

	f.MaxClientsPerDay = "0"
	f.SessionDurationHours = "9"
	res, err = newNormalizer(t, PolicyClamp).Normalize(f)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Request.MaxClientsPerDay)
	assert.Equal(t, 4.0, res.Request.SessionDurationHours)
}

func TestNormalize_HugeClientCounts(t *testing.T) {
	cases := []struct {
		in      RawValue
		policy  RangePolicy
		want    int
		message string
	}{
		{"1e19", PolicyClamp, 10, ""},
		{"-1e19", PolicyClamp, 1, ""},
		{"1e19", PolicyReject, 0, "max_clients_per_day must be less than or equal to 10"},
		{"-1e19", PolicyReject, 0, "max_clients_per_day must be greater than or equal to 1"},
	}
	for _, c := range cases {
		t.Run(string(c.policy)+"/"+string(c.in), func(t *testing.T) {
			f := validForm()
			f.MaxClientsPerDay = c.in
			res, err := newNormalizer(t, c.policy).Normalize(f)
			if c.message == "" {
				require.NoError(t, err)
				assert.Equal(t, c.want, res.Request.MaxClientsPerDay)
				return
			}
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, c.message, verr.Fields["max_clients_per_day"])
		})
	}
}

func TestNormalize_NonNumericAlwaysFails(t *testing.T) {
	f := validForm()
	f.MaxClientsPerDay = "four"
	_, err := newNormalizer(t, PolicyClamp).Normalize(f)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestNormalize_DayValidation(t *testing.T) {
	for _, day := range []RawValue{"0", "6", "monday", "2.5", ""} {
		f := validForm()
		f.Availabilities = []AvailabilityInput{{Day: day, Start: "09:00", End: "10:00"}}
		_, err := newNormalizer(t, PolicyClamp).Normalize(f)
		var verr *ValidationError
		require.True(t, errors.As(err, &verr), "day %q", day)
		assert.Contains(t, verr.Fields, "clinician_availabilities[0].day_of_the_week")
	}
}

func TestNormalize_UnparsedTimeIsWarningNotError(t *testing.T) {
	f := validForm()
	f.Availabilities = []AvailabilityInput{{Day: "1", Start: "morning", End: "17:00"}}
	res, err := newNormalizer(t, PolicyReject).Normalize(f)
	require.NoError(t, err)
	assert.Equal(t, "morning", res.Request.Availabilities[0].Start)
	assert.Equal(t, []TimeWarning{{Field: "clinician_availabilities[0].start_time", Value: "morning"}}, res.Warnings)
}

func TestNormalize_StartMustPrecedeEnd(t *testing.T) {
	f := validForm()
	f.Availabilities = []AvailabilityInput{{Day: "2", Start: "17:00", End: "09:00"}}
	_, err := newNormalizer(t, PolicyReject).Normalize(f)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "clinician_availabilities[0].end_time")
}

func TestNormalize_DuplicateDayLastWriteWins(t *testing.T) {
	f := validForm()
	f.Availabilities = []AvailabilityInput{
		{Day: "4", Start: "08:00", End: "12:00"},
		{Day: "1", Start: "09:00", End: "17:00"},
		{Day: "4", Start: "13:00", End: "18:00"},
	}
	res, err := newNormalizer(t, PolicyReject).Normalize(f)
	require.NoError(t, err)
	assert.Equal(t, []model.Availability{
		{Day: 1, Start: "09:00", End: "17:00"},
		{Day: 4, Start: "13:00", End: "18:00"},
	}, res.Request.Availabilities)
}

func TestNormalize_AddressRequired(t *testing.T) {
	f := validForm()
	f.Address.Street = "  "
	f.Address.Zip = ""
	_, err := newNormalizer(t, PolicyReject).Normalize(f)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "clinician_address.street_name")
	assert.Contains(t, verr.Fields, "clinician_address.zip_code")
	assert.Contains(t, verr.Error(), "street_name is required")
}

func TestNew_UnknownPolicy(t *testing.T) {
	_, err := New("lenient")
	assert.Error(t, err)
	n, err := New("")
	require.NoError(t, err)
	assert.Equal(t, PolicyReject, n.Policy())
}

func TestFormInput_DecodesNumbersAndStrings(t *testing.T) {
	body := `{"clinician_address":{"street_name":"1 Main","city":"Oakland","state":"CA","zip_code":"94610"},
		"clinician_availabilities":[{"day_of_the_week":2,"start_time":"09:00","end_time":"12:00"}],
		"max_clients_per_day":"3","session_duration_hours":1.5}`
	var f FormInput
	require.NoError(t, json.Unmarshal([]byte(body), &f))
	assert.Equal(t, RawValue("3"), f.MaxClientsPerDay)
	assert.Equal(t, RawValue("1.5"), f.SessionDurationHours)
	assert.Equal(t, RawValue("2"), f.Availabilities[0].Day)

	doc := "max_clients_per_day: 5\nsession_duration_hours: \"3\"\nclinician_availabilities:\n  - day_of_the_week: 1\n    start_time: \"8:00 AM\"\n    end_time: \"12:00\"\n"
	var y FormInput
	require.NoError(t, yaml.Unmarshal([]byte(doc), &y))
	assert.Equal(t, RawValue("5"), y.MaxClientsPerDay)
	assert.Equal(t, RawValue("3"), y.SessionDurationHours)
	assert.Equal(t, "8:00 AM", y.Availabilities[0].Start)
}
