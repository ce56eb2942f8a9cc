package model

// Canonical field names. Input headers are mapped onto these names through
// the synonym table, and every Step addresses record values by them.
const (
	FieldPatientID   = "patient_id"
	FieldFirstName   = "first_name"
	FieldLastName    = "last_name"
	FieldDateOfBirth = "date_of_birth"
	FieldSSN         = "social_security_number"
)

// Names of the non-record values that take part in hash-string
// construction. They only exist as keys of the field-tag table.
const (
	FieldSiteID      = "site_id"
	FieldDateOffset  = "date_offset"
	FieldPrivateSalt = "private_salt"
	FieldProjectSalt = "project_salt"
)

// RequiredFields are the canonical columns an input file must provide.
var RequiredFields = []string{
	FieldPatientID,
	FieldFirstName,
	FieldLastName,
	FieldDateOfBirth,
}

// Hash output names. The spelling is part of the exchange format shared
// between sites and must not change.
const (
	HashPatientID           = "PIDHASH"
	HashFnameLnameDOB       = "fnamelnamedob"
	HashFnameLnameDOBSSN    = "fnamelnamedobssn"
	HashLnameFnameDOB       = "lnamefnamedob"
	HashLnameFnameDOBSSN    = "lnamefnamedobssn"
	HashFnameLnameTDOB      = "fnamelnameTdob"
	HashFnameLnameTDOBSSN   = "fnamelnameTdobssn"
	HashFname3LnameDOB      = "fname3lnamedob"
	HashFname3LnameDOBSSN   = "fname3lnamedobssn"
	HashFnameLnameDOBDSSN   = "fnamelnamedobDssn"
	HashFnameLnameDOBYSSN   = "fnamelnamedobYssn"
	UnencryptedPatientIDKey = "PIDHASH_UNENCRYPTED"
)

// HashFields lists every hash output in the column order of the hash file.
var HashFields = []string{
	HashPatientID,
	HashFnameLnameDOB,
	HashFnameLnameDOBSSN,
	HashLnameFnameDOB,
	HashLnameFnameDOBSSN,
	HashFnameLnameTDOB,
	HashFnameLnameTDOBSSN,
	HashFname3LnameDOB,
	HashFname3LnameDOBSSN,
	HashFnameLnameDOBDSSN,
	HashFnameLnameDOBYSSN,
}

// RequiredHashFields must be present on every successfully hashed record,
// derived or not.
var RequiredHashFields = []string{
	HashPatientID,
	HashFnameLnameDOB,
	HashLnameFnameDOB,
	HashFnameLnameTDOB,
}
