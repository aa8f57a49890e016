package clinic

// Clinic is a hospital outpatient clinic (poli). BPJSCode is the code the
// remote authority's HFIS application knows the clinic by; Group partitions
// the daily queue-ticket sequence.
type Clinic struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	ClinicType  *string `json:"clinic_type"`
	BPJSCode    *string `json:"bpjs_code"`
	Counter     *string `json:"counter"`
	Group       *string `json:"group"`
	OnlineQuota *int    `json:"online_quota"`
	Quota       *int    `json:"quota"`
}

// Doctor carries the minimum needed to address a practitioner in remote
// payloads: the local row and the authority's HFIS code.
type Doctor struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	BPJSCode *string `json:"bpjs_code"`
}
