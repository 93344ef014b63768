package domain

// Trainee is a person enrolled in training. ID is assigned by the
// persistence layer and never changes after creation.
type Trainee struct {
	ID          int    `json:"id" db:"id"`
	Lastname    string `json:"lastname" db:"lastname"`
	Firstname   string `json:"firstname" db:"firstname"`
	Email       string `json:"email" db:"email"`
	PhoneNumber string `json:"phoneNumber" db:"phone_number"`
	Birthdate   *Date  `json:"birthdate" db:"birthdate"`
}

// TraineeDTO carries trainee fields across the request boundary. Every field
// is optional at construction; rules are enforced by the validate tags on add.
type TraineeDTO struct {
	ID          *int   `json:"id,omitempty"`
	Lastname    string `json:"lastname" validate:"required,max=50"`
	Firstname   string `json:"firstname" validate:"required,max=50"`
	Email       string `json:"email,omitempty" validate:"omitempty,email,max=100"`
	PhoneNumber string `json:"phoneNumber,omitempty" validate:"omitempty,max=20"`
	Birthdate   *Date  `json:"birthdate,omitempty"`
}

// NewTraineeDTO builds a DTO from every field.
func NewTraineeDTO(id *int, lastname, firstname, email, phoneNumber string, birthdate *Date) TraineeDTO {
	return TraineeDTO{
		ID:          id,
		Lastname:    lastname,
		Firstname:   firstname,
		Email:       email,
		PhoneNumber: phoneNumber,
		Birthdate:   birthdate,
	}
}

// ToTrainee converts the DTO into an entity. A nil ID maps to zero.
func (d TraineeDTO) ToTrainee() Trainee {
	t := Trainee{
		Lastname:    d.Lastname,
		Firstname:   d.Firstname,
		Email:       d.Email,
		PhoneNumber: d.PhoneNumber,
		Birthdate:   d.Birthdate,
	}
	if d.ID != nil {
		t.ID = *d.ID
	}
	return t
}

// TraineeDTOBuilder assembles a TraineeDTO from any subset of fields.
type TraineeDTOBuilder struct {
	dto TraineeDTO
}

// NewTraineeDTOBuilder starts an empty builder.
func NewTraineeDTOBuilder() *TraineeDTOBuilder {
	return &TraineeDTOBuilder{}
}

func (b *TraineeDTOBuilder) ID(id int) *TraineeDTOBuilder {
	b.dto.ID = &id
	return b
}

func (b *TraineeDTOBuilder) Lastname(v string) *TraineeDTOBuilder {
	b.dto.Lastname = v
	return b
}

func (b *TraineeDTOBuilder) Firstname(v string) *TraineeDTOBuilder {
	b.dto.Firstname = v
	return b
}

func (b *TraineeDTOBuilder) Email(v string) *TraineeDTOBuilder {
	b.dto.Email = v
	return b
}

func (b *TraineeDTOBuilder) PhoneNumber(v string) *TraineeDTOBuilder {
	b.dto.PhoneNumber = v
	return b
}

func (b *TraineeDTOBuilder) Birthdate(d Date) *TraineeDTOBuilder {
	b.dto.Birthdate = &d
	return b
}

// Build returns a copy of the assembled DTO.
func (b *TraineeDTOBuilder) Build() TraineeDTO {
	return b.dto
}
