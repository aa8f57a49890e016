package bpjs

import (
	"context"
	"fmt"
	"net/http"
)

// Client is the typed catalog of remote endpoints the bridge consumes. Each
// method is a thin, named wrapper over Gateway.Call; path shapes follow the
// authority's published URL schemes.
type Client struct {
	gw *Gateway
}

func NewClient(gw *Gateway) *Client {
	return &Client{gw: gw}
}

// --- Queueing service (antrean) ---

func (c *Client) RefPoli(ctx context.Context) (*Envelope, error) {
	return c.gw.Call(ctx, ServiceAntrean, http.MethodGet, "/ref/poli", nil, "")
}

func (c *Client) RefDokter(ctx context.Context) (*Envelope, error) {
	return c.gw.Call(ctx, ServiceAntrean, http.MethodGet, "/ref/dokter", nil, "")
}

func (c *Client) JadwalDokter(ctx context.Context, kodePoli, tanggal string) (*Envelope, error) {
	return c.gw.Call(ctx, ServiceAntrean, http.MethodGet,
		fmt.Sprintf("/jadwaldokter/kodepoli/%s/tanggal/%s", kodePoli, tanggal), nil, "")
}

func (c *Client) RefPoliFingerprint(ctx context.Context) (*Envelope, error) {
	return c.gw.Call(ctx, ServiceAntrean, http.MethodGet, "/ref/poli/fp", nil, "")
}

func (c *Client) RefPasienFingerprint(ctx context.Context, identitas, noIdentitas string) (*Envelope, error) {
	return c.gw.Call(ctx, ServiceAntrean, http.MethodGet,
		fmt.Sprintf("/ref/pasien/fp/identitas/%s/noidentitas/%s", identitas, noIdentitas), nil, "")
}

func (c *Client) ListTask(ctx context.Context, payload interface{}) (*Envelope, error) {
	return c.gw.Call(ctx, ServiceAntrean, http.MethodPost, "/antrean/getlisttask", payload, "")
}

func (c *Client) AddAntrean(ctx context.Context, payload interface{}) (*Envelope, error) {
	return c.gw.Call(ctx, ServiceAntrean, http.MethodPost, "/antrean/add", payload, "")
}

func (c *Client) UpdateWaktuAntrean(ctx context.Context, payload interface{}) (*Envelope, error) {
	return c.gw.Call(ctx, ServiceAntrean, http.MethodPost, "/antrean/updatewaktu", payload, "")
}

func (c *Client) DashboardWaktuTungguTanggal(ctx context.Context, tanggal, waktu string) (*Envelope, error) {
	return c.gw.Call(ctx, ServiceAntrean, http.MethodGet,
		fmt.Sprintf("/dashboard/waktutunggu/tanggal/%s/waktu/%s", tanggal, waktu), nil, "")
}

func (c *Client) DashboardWaktuTungguBulan(ctx context.Context, bulan, tahun, waktu string) (*Envelope, error) {
	return c.gw.Call(ctx, ServiceAntrean, http.MethodGet,
		fmt.Sprintf("/dashboard/waktutunggu/bulan/%s/tahun/%s/waktu/%s", bulan, tahun, waktu), nil, "")
}

func (c *Client) PendaftaranTanggal(ctx context.Context, tanggal string) (*Envelope, error) {
	return c.gw.Call(ctx, ServiceAntrean, http.MethodGet,
		"/antrean/pendaftaran/tanggal/"+tanggal, nil, "")
}

func (c *Client) PendaftaranByKodeBooking(ctx context.Context, kodeBooking string) (*Envelope, error) {
	return c.gw.Call(ctx, ServiceAntrean, http.MethodGet,
		"/antrean/pendaftaran/kodebooking/"+kodeBooking, nil, "")
}

func (c *Client) PendaftaranAktif(ctx context.Context) (*Envelope, error) {
	return c.gw.Call(ctx, ServiceAntrean, http.MethodGet, "/antrean/pendaftaran/aktif", nil, "")
}

func (c *Client) PendaftaranSpesifik(ctx context.Context, kodePoli, kodeDokter, hari, jamPraktek string) (*Envelope, error) {
	return c.gw.Call(ctx, ServiceAntrean, http.MethodGet,
		fmt.Sprintf("/antrean/pendaftaran/kodepoli/%s/kodedokter/%s/hari/%s/jampraktek/%s",
			kodePoli, kodeDokter, hari, jamPraktek), nil, "")
}

// --- Eligibility/claims service (vclaim) ---

func (c *Client) PesertaByNoKartu(ctx context.Context, noKartu, tglSEP string) (*Envelope, error) {
	return c.gw.Call(ctx, ServiceVClaim, http.MethodGet,
		fmt.Sprintf("/Peserta/nokartu/%s/tglSEP/%s", noKartu, tglSEP), nil, "")
}

func (c *Client) PesertaByNIK(ctx context.Context, nik, tglSEP string) (*Envelope, error) {
	return c.gw.Call(ctx, ServiceVClaim, http.MethodGet,
		fmt.Sprintf("/Peserta/nik/%s/tglSEP/%s", nik, tglSEP), nil, "")
}

func (c *Client) SEPDetail(ctx context.Context, noSEP string) (*Envelope, error) {
	return c.gw.Call(ctx, ServiceVClaim, http.MethodGet, "/SEP/"+noSEP, nil, "")
}

func (c *Client) LastSEPByNoRujukan(ctx context.Context, noRujukan string) (*Envelope, error) {
	return c.gw.Call(ctx, ServiceVClaim, http.MethodGet, "/Rujukan/lastsep/norujukan/"+noRujukan, nil, "")
}

func (c *Client) RujukanByNoRujukan(ctx context.Context, noRujukan string) (*Envelope, error) {
	return c.gw.Call(ctx, ServiceVClaim, http.MethodGet, "/Rujukan/"+noRujukan, nil, "")
}

func (c *Client) RujukanByNoKartu(ctx context.Context, noKartu string) (*Envelope, error) {
	return c.gw.Call(ctx, ServiceVClaim, http.MethodGet, "/Rujukan/Peserta/"+noKartu, nil, "")
}

func (c *Client) RujukanListByNoKartu(ctx context.Context, noKartu string) (*Envelope, error) {
	return c.gw.Call(ctx, ServiceVClaim, http.MethodGet, "/Rujukan/RS/List/Peserta/"+noKartu, nil, "")
}

// InsertSEP registers an eligibility certificate. The endpoint demands the
// form content-type header while accepting a JSON body.
func (c *Client) InsertSEP(ctx context.Context, payload interface{}) (*Envelope, error) {
	return c.gw.Call(ctx, ServiceVClaim, http.MethodPost, "/SEP/2.0/insert", payload, ContentTypeForm)
}

// DeleteSEP voids a previously issued certificate.
func (c *Client) DeleteSEP(ctx context.Context, payload interface{}) (*Envelope, error) {
	return c.gw.Call(ctx, ServiceVClaim, http.MethodDelete, "/SEP/2.0/delete", payload, ContentTypeForm)
}
