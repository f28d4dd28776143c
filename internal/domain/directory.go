package domain

// Pet, Owner and Doctor are the directory records supplied by the surrounding
// clinic system. The ward only reads them.
type Pet struct {
	ID      string `json:"id"`
	OwnerID string `json:"owner_id"`
	Name    string `json:"name"`
	Species string `json:"species"`
	Breed   string `json:"breed,omitempty"`
}

type Owner struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

type Doctor struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Specialization string `json:"specialization,omitempty"`
	Phone          string `json:"phone,omitempty"`
}

func (p Pet) Ref() PetRef {
	return PetRef{ID: p.ID, Name: p.Name, Species: p.Species, Breed: p.Breed}
}

func (o Owner) Ref() OwnerRef {
	return OwnerRef{ID: o.ID, Name: o.Name, Phone: o.Phone}
}

func (d Doctor) Ref() DoctorRef {
	return DoctorRef{ID: d.ID, Name: d.Name, Specialization: d.Specialization}
}
