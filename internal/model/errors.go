package model

import "github.com/rotisserie/eris"

var (
	errBusinessNameRequired = eris.New("model: business_name is required")
	errInvalidCRMID         = eris.New("model: crm_id does not match the expected format")
)
