/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

const (
	maxRequestBody = 1 << 16
	qrSize         = 320
)

// looseString accepts a JSON string or number, so numeric passwords
// posted without quotes still work.
type looseString string

func (s *looseString) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		*s = looseString(str)
		return nil
	}

	var num json.Number
	if err := json.Unmarshal(b, &num); err != nil {
		return errors.New("expected a string or a number")
	}
	*s = looseString(num.String())

	return nil
}

type createRoomRequest struct {
	RoomID       looseString `json:"roomId"`
	HostPassword looseString `json:"hostPassword"`
}

type createRoomResponse struct {
	OK         bool   `json:"ok"`
	RoomID     string `json:"roomId,omitempty"`
	InviteLink string `json:"inviteLink,omitempty"`
	Error      string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	return json.NewEncoder(w).Encode(body)
}

// serveCreateRoom sets (or replaces) a room's host password and hands back
// an invite link for it.
func serveCreateRoom(cfg *Config, gm *RoomManager, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		securityHeaders(cfg, w)

		var req createRoomRequest

		err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req)
		if err != nil || req.RoomID == "" || req.HostPassword == "" {
			if err := writeJSON(w, http.StatusBadRequest, createRoomResponse{Error: ErrMissingField.Error()}); err != nil {
				errs <- err
			}

			return
		}

		roomID := string(req.RoomID)

		gm.setHostPassword(roomID, string(req.HostPassword))

		err = writeJSON(w, http.StatusOK, createRoomResponse{
			OK:         true,
			RoomID:     roomID,
			InviteLink: cfg.inviteLink(roomID),
		})
		if err != nil {
			errs <- err

			return
		}

		logf(cfg, "ROOMS: Configured room %s for %s in %s",
			roomID,
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	}
}

// serveInviteQR renders a room's invite link as a PNG QR code.
func serveInviteQR(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		roomID := strings.TrimSpace(p.ByName("roomid"))
		if roomID == "" {
			http.Error(w, "missing room id", http.StatusBadRequest)
			return
		}

		png, err := qrcode.Encode(cfg.inviteLink(roomID), qrcode.Medium, qrSize)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		securityHeaders(cfg, w)

		_, err = w.Write(png)
		if err != nil {
			errs <- err

			return
		}

		logf(cfg, "SERVE: Invite QR for %s (%s) to %s", roomID, humanReadableSize(int64(len(png))), realIP(r))
	}
}
