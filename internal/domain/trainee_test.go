package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraineeDTOBuilder_SubsetOfFields(t *testing.T) {
	dto := NewTraineeDTOBuilder().
		Lastname("Bond").
		Firstname("James").
		Build()

	assert.Nil(t, dto.ID)
	assert.Equal(t, "Bond", dto.Lastname)
	assert.Equal(t, "James", dto.Firstname)
	assert.Empty(t, dto.Email)
	assert.Nil(t, dto.Birthdate)
}

func TestTraineeDTOBuilder_AllFieldsMatchesConstructor(t *testing.T) {
	bd := NewDate(1968, time.April, 13)
	id := 7

	built := NewTraineeDTOBuilder().
		ID(7).
		Lastname("Bond").
		Firstname("James").
		Email("james.bond@mi6.uk").
		PhoneNumber("+44 0007").
		Birthdate(bd).
		Build()
	full := NewTraineeDTO(&id, "Bond", "James", "james.bond@mi6.uk", "+44 0007", &bd)

	assert.Equal(t, full, built)
}

func TestTraineeDTO_ToTrainee(t *testing.T) {
	bd := NewDate(2000, time.January, 31)
	tr := NewTraineeDTOBuilder().ID(3).Lastname("Doe").Firstname("Jane").Birthdate(bd).Build().ToTrainee()

	assert.Equal(t, 3, tr.ID)
	assert.Equal(t, "Doe", tr.Lastname)
	require.NotNil(t, tr.Birthdate)
	assert.True(t, tr.Birthdate.Equal(bd))

	noID := NewTraineeDTOBuilder().Lastname("Doe").Build().ToTrainee()
	assert.Zero(t, noID.ID)
}

func TestDate_JSON(t *testing.T) {
	var dto TraineeDTO
	err := json.Unmarshal([]byte(`{"lastname":"Doe","firstname":"Jane","birthdate":"1990-05-17"}`), &dto)
	require.NoError(t, err)
	require.NotNil(t, dto.Birthdate)
	assert.Equal(t, "1990-05-17", dto.Birthdate.String())

	out, err := json.Marshal(dto.ToTrainee())
	require.NoError(t, err)
	assert.Contains(t, string(out), `"birthdate":"1990-05-17"`)
	assert.Contains(t, string(out), `"phoneNumber":""`)
}

func TestDate_UnmarshalRejectsBadFormat(t *testing.T) {
	var d Date
	assert.Error(t, json.Unmarshal([]byte(`"17/05/1990"`), &d))
	assert.Error(t, json.Unmarshal([]byte(`19900517`), &d))
}

func TestDate_Scan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(1990, 5, 17, 13, 45, 0, 0, time.Local)))
	assert.Equal(t, "1990-05-17", d.String())

	require.NoError(t, d.Scan([]byte("2001-02-03")))
	assert.Equal(t, "2001-02-03", d.String())

	assert.Error(t, d.Scan(42))
}
