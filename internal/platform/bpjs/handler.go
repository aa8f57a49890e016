package bpjs

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Handler exposes the remote read catalog as pass-through endpoints: each
// route performs one signed call and returns the envelope body verbatim, so
// upstream consumers see decrypted payloads without knowing the protocol.
type Handler struct {
	client *Client
}

func NewHandler(client *Client) *Handler {
	return &Handler{client: client}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/bpjs")

	g.GET("/ref/poli", h.passthrough(func(c echo.Context) (*Envelope, error) {
		return h.client.RefPoli(c.Request().Context())
	}))
	g.GET("/ref/dokter", h.passthrough(func(c echo.Context) (*Envelope, error) {
		return h.client.RefDokter(c.Request().Context())
	}))
	g.GET("/jadwaldokter/kodepoli/:kodepoli/tanggal/:tanggal", h.passthrough(func(c echo.Context) (*Envelope, error) {
		return h.client.JadwalDokter(c.Request().Context(), c.Param("kodepoli"), c.Param("tanggal"))
	}))
	g.GET("/ref/poli/fp", h.passthrough(func(c echo.Context) (*Envelope, error) {
		return h.client.RefPoliFingerprint(c.Request().Context())
	}))
	g.GET("/ref/pasien/fp/identitas/:identitas/noidentitas/:noidentitas", h.passthrough(func(c echo.Context) (*Envelope, error) {
		return h.client.RefPasienFingerprint(c.Request().Context(), c.Param("identitas"), c.Param("noidentitas"))
	}))
	g.POST("/antrean/getlisttask", h.passthroughBody(h.client.ListTask))
	g.POST("/antrean/add", h.passthroughBody(h.client.AddAntrean))
	g.POST("/antrean/updatewaktu", h.passthroughBody(h.client.UpdateWaktuAntrean))
	g.GET("/dashboard/waktutunggu/tanggal/:tanggal/waktu/:waktu", h.passthrough(func(c echo.Context) (*Envelope, error) {
		return h.client.DashboardWaktuTungguTanggal(c.Request().Context(), c.Param("tanggal"), c.Param("waktu"))
	}))
	g.GET("/dashboard/waktutunggu/bulan/:bulan/tahun/:tahun/waktu/:waktu", h.passthrough(func(c echo.Context) (*Envelope, error) {
		return h.client.DashboardWaktuTungguBulan(c.Request().Context(), c.Param("bulan"), c.Param("tahun"), c.Param("waktu"))
	}))
	g.GET("/antrean/pendaftaran/tanggal/:tanggal", h.passthrough(func(c echo.Context) (*Envelope, error) {
		return h.client.PendaftaranTanggal(c.Request().Context(), c.Param("tanggal"))
	}))
	g.GET("/antrean/pendaftaran/kodebooking/:kodebooking", h.passthrough(func(c echo.Context) (*Envelope, error) {
		return h.client.PendaftaranByKodeBooking(c.Request().Context(), c.Param("kodebooking"))
	}))
	g.GET("/antrean/pendaftaran/aktif", h.passthrough(func(c echo.Context) (*Envelope, error) {
		return h.client.PendaftaranAktif(c.Request().Context())
	}))
	g.GET("/antrean/pendaftaran/kodepoli/:kodepoli/kodedokter/:kodedokter/hari/:hari/jampraktek/:jampraktek", h.passthrough(func(c echo.Context) (*Envelope, error) {
		return h.client.PendaftaranSpesifik(c.Request().Context(), c.Param("kodepoli"), c.Param("kodedokter"), c.Param("hari"), c.Param("jampraktek"))
	}))

	g.GET("/vclaim/peserta/nokartu/:nokartu/tglsep/:tglsep", h.passthrough(func(c echo.Context) (*Envelope, error) {
		return h.client.PesertaByNoKartu(c.Request().Context(), c.Param("nokartu"), c.Param("tglsep"))
	}))
	g.GET("/vclaim/peserta/nik/:nik/tglsep/:tglsep", h.passthrough(func(c echo.Context) (*Envelope, error) {
		return h.client.PesertaByNIK(c.Request().Context(), c.Param("nik"), c.Param("tglsep"))
	}))
	g.GET("/vclaim/sep/:nosep", h.passthrough(func(c echo.Context) (*Envelope, error) {
		return h.client.SEPDetail(c.Request().Context(), c.Param("nosep"))
	}))
	g.DELETE("/vclaim/sep", h.passthroughBody(h.client.DeleteSEP))
	g.GET("/vclaim/rujukan/lastsep/norujukan/:norujukan", h.passthrough(func(c echo.Context) (*Envelope, error) {
		return h.client.LastSEPByNoRujukan(c.Request().Context(), c.Param("norujukan"))
	}))
	g.GET("/vclaim/rujukan/peserta/:nokartu", h.passthrough(func(c echo.Context) (*Envelope, error) {
		return h.client.RujukanByNoKartu(c.Request().Context(), c.Param("nokartu"))
	}))
	g.GET("/vclaim/rujukan/rs/list/peserta/:nokartu", h.passthrough(func(c echo.Context) (*Envelope, error) {
		return h.client.RujukanListByNoKartu(c.Request().Context(), c.Param("nokartu"))
	}))
	g.GET("/vclaim/rujukan/:norujukan", h.passthrough(func(c echo.Context) (*Envelope, error) {
		return h.client.RujukanByNoRujukan(c.Request().Context(), c.Param("norujukan"))
	}))
}

func (h *Handler) passthrough(call func(echo.Context) (*Envelope, error)) echo.HandlerFunc {
	return func(c echo.Context) error {
		env, err := call(c)
		if err != nil {
			// Configuration failure, nothing was sent.
			return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
		}
		return respond(c, env)
	}
}

func (h *Handler) passthroughBody(call func(ctx context.Context, payload interface{}) (*Envelope, error)) echo.HandlerFunc {
	return func(c echo.Context) error {
		var body map[string]interface{}
		if err := c.Bind(&body); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		env, err := call(c.Request().Context(), body)
		if err != nil {
			return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
		}
		return respond(c, env)
	}
}

func respond(c echo.Context, env *Envelope) error {
	status := http.StatusOK
	if env.Kind == KindFailure {
		status = http.StatusBadGateway
	}
	if env.Body != nil {
		return c.JSON(status, env.Body)
	}
	return c.JSON(status, map[string]interface{}{
		"metaData": map[string]interface{}{"code": env.Code, "message": env.Message},
		"response": env.Response,
	})
}
