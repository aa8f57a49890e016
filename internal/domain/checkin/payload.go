package checkin

import (
	"context"

	"github.com/bpjs/bridge/internal/domain/booking"
	"github.com/bpjs/bridge/internal/domain/clinic"
	"github.com/bpjs/bridge/internal/domain/patient"
	"github.com/bpjs/bridge/internal/domain/registration"
)

// sepFields is everything the SEP 2.0 insert payload needs, flattened. The
// payload builders are alternative defaulting strategies, not one canonical
// algorithm: the plain check-in defaults a normal visit, the control-visit
// variant overrides purpose and referral from the plan.
type sepFields struct {
	CardNo       string
	Date         string
	HospitalCode string
	MRN          string
	ClinicCode   string
	DoctorCode   string
	Phone        string
	User         string
	ClassOfCare  string
	Diagnosis    string

	ReferralOrigin   string
	ReferralNo       string
	ReferralDate     string
	ReferralProvider string

	VisitPurpose      string
	ProcedureFlag     string
	SupportCode       string
	ServiceAssessment string
	ControlLetterNo   string
}

func (o *Orchestrator) sepFieldsFor(ctx context.Context, b *booking.Booking, p *patient.Patient, date string, req CheckInRequest, plan *registration.ControlPlan) sepFields {
	f := sepFields{
		CardNo:         b.InsuranceCardNo,
		Date:           date,
		HospitalCode:   o.hospitalCode,
		MRN:            p.MedicalRecordNo,
		Diagnosis:      req.InitialDiagnosis,
		User:           req.User,
		ReferralOrigin: "1",
		VisitPurpose:   "0",
	}
	if b.ClinicCode != nil {
		f.ClinicCode = *b.ClinicCode
	}
	if b.DoctorCode != nil {
		f.DoctorCode = *b.DoctorCode
	}
	if b.Phone != nil {
		f.Phone = *b.Phone
	}
	if b.ReferralNo != nil {
		f.ReferralNo = *b.ReferralNo
	}

	if plan != nil {
		// Control visit: purpose 2 (kontrol), referral and assessment fields
		// ride the plan.
		f.VisitPurpose = "2"
		f.ControlLetterNo = plan.LetterNo
		if plan.ReferralNo != nil && *plan.ReferralNo != "" {
			f.ReferralNo = *plan.ReferralNo
		}
		if plan.VisitPurpose != nil && *plan.VisitPurpose != "" {
			f.VisitPurpose = *plan.VisitPurpose
		}
		if plan.ProcedureFlag != nil {
			f.ProcedureFlag = *plan.ProcedureFlag
		}
		if plan.SupportCode != nil {
			f.SupportCode = *plan.SupportCode
		}
		if plan.ServiceAssessment != nil {
			f.ServiceAssessment = *plan.ServiceAssessment
		}
		if f.Diagnosis == "" && plan.InitialDiagnosis != nil {
			f.Diagnosis = *plan.InitialDiagnosis
		}
	}

	// Remote-fetched supplements, best effort: the local values win when the
	// remote reads fail.
	if f.CardNo != "" {
		if class := o.fetchClassOfCare(ctx, f.CardNo, date); class != "" {
			f.ClassOfCare = class
		}
	}
	if f.ReferralNo != "" {
		o.supplementReferral(ctx, &f)
	}
	return f
}

// fetchClassOfCare asks the eligibility service for the participant's
// class-of-care code. Any failure degrades to an empty string.
func (o *Orchestrator) fetchClassOfCare(ctx context.Context, cardNo, date string) string {
	env, err := o.remote.PesertaByNoKartu(ctx, cardNo, date)
	if err != nil || !env.OK() {
		return ""
	}
	return dig(env.Response, "peserta", "hakKelas", "kode")
}

// supplementReferral fills referral date and origin provider from the remote
// referral record when the booking does not carry them.
func (o *Orchestrator) supplementReferral(ctx context.Context, f *sepFields) {
	env, err := o.remote.RujukanByNoRujukan(ctx, f.ReferralNo)
	if err != nil || !env.OK() {
		return
	}
	if f.ReferralDate == "" {
		f.ReferralDate = dig(env.Response, "rujukan", "tglKunjungan")
	}
	if f.ReferralProvider == "" {
		f.ReferralProvider = dig(env.Response, "rujukan", "provPerujuk", "kode")
	}
	if f.Diagnosis == "" {
		f.Diagnosis = dig(env.Response, "rujukan", "diagnosa", "kode")
	}
}

// buildSEPPayload assembles the authority's SEP 2.0 insert request body.
func buildSEPPayload(f sepFields) map[string]interface{} {
	return map[string]interface{}{
		"request": map[string]interface{}{
			"t_sep": map[string]interface{}{
				"noKartu":      f.CardNo,
				"tglSep":       f.Date,
				"ppkPelayanan": f.HospitalCode,
				"jnsPelayanan": "2",
				"klsRawat": map[string]interface{}{
					"klsRawatHak":     f.ClassOfCare,
					"klsRawatNaik":    "",
					"pembiayaan":      "",
					"penanggungJawab": "",
				},
				"noMR": f.MRN,
				"rujukan": map[string]interface{}{
					"asalRujukan": f.ReferralOrigin,
					"tglRujukan":  f.ReferralDate,
					"noRujukan":   f.ReferralNo,
					"ppkRujukan":  f.ReferralProvider,
				},
				"catatan":  "",
				"diagAwal": f.Diagnosis,
				"poli": map[string]interface{}{
					"tujuan":    f.ClinicCode,
					"eksekutif": "0",
				},
				"cob":     map[string]interface{}{"cob": "0"},
				"katarak": map[string]interface{}{"katarak": "0"},
				"jaminan": map[string]interface{}{
					"lakaLantas": "0",
					"noLP":       "",
					"penjamin": map[string]interface{}{
						"tglKejadian": "",
						"keterangan":  "",
						"suplesi": map[string]interface{}{
							"suplesi":      "0",
							"noSepSuplesi": "",
							"lokasiLaka": map[string]interface{}{
								"kdPropinsi":  "",
								"kdKabupaten": "",
								"kdKecamatan": "",
							},
						},
					},
				},
				"tujuanKunj":    f.VisitPurpose,
				"flagProcedure": f.ProcedureFlag,
				"kdPenunjang":   f.SupportCode,
				"assesmentPel":  f.ServiceAssessment,
				"skdp": map[string]interface{}{
					"noSurat":  f.ControlLetterNo,
					"kodeDPJP": f.DoctorCode,
				},
				"dpjpLayan": f.DoctorCode,
				"noTelp":    f.Phone,
				"user":      f.User,
			},
		},
	}
}

func (o *Orchestrator) newRegistration(b *booking.Booking, req CheckInRequest, date string, countToday int, cl *clinic.Clinic, p *patient.Patient, ticket *registration.QueueTicket, doctorID *int64, plan *registration.ControlPlan, sepReq *SEPCheckInRequest) *registration.Registration {
	payer := "jkn"
	patientType := "bpjs"
	source := "online"
	status := "registered"
	reg := &registration.Registration{
		RegistrationID: registration.FormatRegistrationID(date, countToday),
		PatientID:      p.ID,
		DoctorID:       doctorID,
		ClinicID:       cl.ID,
		QueueTicketID:  &ticket.ID,
		Status:         status,
		PayerType:      &payer,
		PatientType:    &patientType,
		ReferralSource: &source,
		InputFrom:      strPtr("bridge"),
		QueueNo:        b.QueueTicketNo,
		ReferralNo:     b.ReferralNo,
	}
	if b.InsuranceCardNo != "" {
		card := b.InsuranceCardNo
		reg.InsuranceCardNo = &card
	}
	if req.InitialDiagnosis != "" {
		reg.InitialDiagnosis = &req.InitialDiagnosis
	} else if plan != nil && plan.InitialDiagnosis != nil {
		reg.InitialDiagnosis = plan.InitialDiagnosis
	}
	if plan != nil && plan.ReferralNo != nil && *plan.ReferralNo != "" {
		reg.ReferralNo = plan.ReferralNo
	}
	if sepReq != nil {
		reg.SEPNo = &sepReq.SEPNo
		sepDate := sepReq.SEPDate
		if sepDate == "" {
			sepDate = date
		}
		reg.SEPDate = &sepDate
	}
	return reg
}

func (o *Orchestrator) newAuditTrail(reg *registration.Registration, cl *clinic.Clinic, p *patient.Patient, user string) *registration.AuditTrail {
	var userPtr *string
	if user != "" {
		userPtr = &user
	}
	patientStatus := "outpatient"
	return &registration.AuditTrail{
		Status: registration.StatusHistory{
			RegistrationID: reg.ID,
			Status:         reg.Status,
			ClinicID:       cl.ID,
			ReferralSource: reg.ReferralSource,
		},
		Visitor: registration.VisitorHistory{
			RegistrationID: reg.ID,
			PatientID:      p.ID,
			ReferralSource: reg.ReferralSource,
			ClinicType:     cl.ClinicType,
			PatientStatus:  &patientStatus,
			User:           userPtr,
		},
		Visit: registration.OutpatientVisitHistory{
			RegistrationID: reg.ID,
			PatientID:      p.ID,
			ClinicID:       cl.ID,
			DoctorID:       reg.DoctorID,
			User:           userPtr,
			ReferralSource: reg.ReferralSource,
		},
	}
}

// dig walks nested map[string]interface{} values and returns the string leaf,
// or "" when any hop is missing or not a map.
func dig(v interface{}, keys ...string) string {
	for _, key := range keys[:len(keys)-1] {
		m, ok := v.(map[string]interface{})
		if !ok {
			return ""
		}
		v = m[key]
	}
	m, ok := v.(map[string]interface{})
	if !ok {
		return ""
	}
	s, _ := m[keys[len(keys)-1]].(string)
	return s
}

func strPtr(s string) *string { return &s }
