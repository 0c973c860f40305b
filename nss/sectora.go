/*
 *  MIT License
 *
 *  Copyright (c) 2020 Nicolas JUHEL
 *
 *  Permission is hereby granted, free of charge, to any person obtaining a copy
 *  of this software and associated documentation files (the "Software"), to deal
 *  in the Software without restriction, including without limitation the rights
 *  to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 *  copies of the Software, and to permit persons to whom the Software is
 *  furnished to do so, subject to the following conditions:
 *
 *  The above copyright notice and this permission notice shall be included in all
 *  copies or substantial portions of the Software.
 *
 *  THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 *  IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 *  FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 *  AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 *  LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 *  OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 *  SOFTWARE.
 *
 */

// Package main builds libnss_sectora.so: the fourteen name-service-switch
// entry points glibc's resolver dlopen's and calls directly, per spec.md
// §4.F. Each export is a thin adapter from the C calling convention onto
// internal/nssclient and internal/buffer; no lookup logic lives here.
package main

/*
#include <pwd.h>
#include <grp.h>
#include <shadow.h>
#include <string.h>
#include <errno.h>

// The entry points return values of glibc's enum nss_status convention
// (spec.md §7): NSS_STATUS_TRYAGAIN=-2, NSS_STATUS_UNAVAIL=-1,
// NSS_STATUS_NOTFOUND=0, NSS_STATUS_SUCCESS=1.
static void set_errno(int *errnop, int value) { *errnop = value; }
*/
import "C"

import (
	"os"
	"unsafe"

	"github.com/nabbar/sectora/internal/buffer"
	"github.com/nabbar/sectora/internal/config"
	"github.com/nabbar/sectora/internal/domain"
	"github.com/nabbar/sectora/internal/nssclient"
	"github.com/nabbar/sectora/internal/wire"
)

// session bundles everything one entry point invocation needs: the loaded
// config (for socket paths) and the connected per-call client.
type session struct {
	cfg *domain.Config
	cli *nssclient.Client
}

// openSession loads the administrator config and dials the daemon. Every
// failure here is try-again per spec.md §4.F: the host program retries the
// lookup later rather than treating a transient daemon outage as fatal.
func openSession() (*session, *nssclient.Client, error) {
	cfg, err := config.Load(config.Path())
	if err != nil {
		return nil, nil, err
	}
	cli, err := nssclient.Dial(cfg.ClientSocketDir, cfg.DaemonSocketPath)
	if err != nil {
		return nil, nil, err
	}
	return &session{cfg: cfg, cli: cli}, cli, nil
}

// region wraps the caller-supplied C buffer as a Go byte slice in place,
// with no copy: buffer.Packer writes directly into the host process's
// memory, exactly as a C NSS module would.
func region(buf *C.char, buflen C.size_t) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(buf)), int(buflen))
}

// charPtr turns an offset a buffer.Packer returned into the absolute
// pointer the C struct field expects: base address of the region plus the
// offset, since buffer.Packer only knows relative offsets (it never sees
// the region's real address).
func charPtr(buf *C.char, off int) *C.char {
	return (*C.char)(unsafe.Pointer(uintptr(unsafe.Pointer(buf)) + uintptr(off)))
}

func statusAndErrno(err error, errnop *C.int) C.int {
	status, errno := nssclient.StatusForError(err)
	C.set_errno(errnop, C.int(errno))
	return C.int(status)
}

//export _nss_sectora_getpwnam_r
func _nss_sectora_getpwnam_r(name *C.char, result *C.struct_passwd, buf *C.char, buflen C.size_t, errnop *C.int) C.int {
	return getpw(wire.PwRequest{ByName: strArg(name)}, result, buf, buflen, errnop)
}

//export _nss_sectora_getpwuid_r
func _nss_sectora_getpwuid_r(uid C.uid_t, result *C.struct_passwd, buf *C.char, buflen C.size_t, errnop *C.int) C.int {
	u := uint64(uid)
	return getpw(wire.PwRequest{ByUID: &u}, result, buf, buflen, errnop)
}

func getpw(req wire.PwRequest, result *C.struct_passwd, buf *C.char, buflen C.size_t, errnop *C.int) C.int {
	_, cli, err := openSession()
	if err != nil {
		return statusAndErrno(err, errnop)
	}
	defer cli.Close()

	reply, err := cli.Call(req)
	if err != nil {
		return statusAndErrno(err, errnop)
	}
	pw := reply.(wire.PwReply)

	p := buffer.New(region(buf, buflen))
	fields, err := buffer.PackPw(p, pw.Login, pw.Home, pw.Shell, uint32(pw.UID), uint32(pw.GID))
	if err != nil {
		return statusAndErrno(err, errnop)
	}

	result.pw_name = charPtr(buf, fields.NameOff)
	result.pw_passwd = charPtr(buf, fields.PasswdOff)
	result.pw_gecos = charPtr(buf, fields.GecosOff)
	result.pw_dir = charPtr(buf, fields.HomeOff)
	result.pw_shell = charPtr(buf, fields.ShellOff)
	result.pw_uid = C.uid_t(fields.UID)
	result.pw_gid = C.gid_t(fields.GID)

	return statusAndErrno(nil, errnop)
}

//export _nss_sectora_setpwent
func _nss_sectora_setpwent() C.int { return setEntry(wire.PwRequest{Entry: entryKey(wire.EntrySet)}) }

//export _nss_sectora_endpwent
func _nss_sectora_endpwent() C.int { return setEntry(wire.PwRequest{Entry: entryKey(wire.EntryEnd)}) }

//export _nss_sectora_getpwent_r
func _nss_sectora_getpwent_r(result *C.struct_passwd, buf *C.char, buflen C.size_t, errnop *C.int) C.int {
	return getpw(wire.PwRequest{Entry: entryKey(wire.EntryGet)}, result, buf, buflen, errnop)
}

//export _nss_sectora_getspnam_r
func _nss_sectora_getspnam_r(name *C.char, result *C.struct_spwd, buf *C.char, buflen C.size_t, errnop *C.int) C.int {
	return getsp(wire.SpRequest{ByName: strArg(name)}, result, buf, buflen, errnop)
}

//export _nss_sectora_setspent
func _nss_sectora_setspent() C.int { return setEntry(wire.SpRequest{Entry: entryKey(wire.EntrySet)}) }

//export _nss_sectora_endspent
func _nss_sectora_endspent() C.int { return setEntry(wire.SpRequest{Entry: entryKey(wire.EntryEnd)}) }

//export _nss_sectora_getspent_r
func _nss_sectora_getspent_r(result *C.struct_spwd, buf *C.char, buflen C.size_t, errnop *C.int) C.int {
	return getsp(wire.SpRequest{Entry: entryKey(wire.EntryGet)}, result, buf, buflen, errnop)
}

func getsp(req wire.SpRequest, result *C.struct_spwd, buf *C.char, buflen C.size_t, errnop *C.int) C.int {
	_, cli, err := openSession()
	if err != nil {
		return statusAndErrno(err, errnop)
	}
	defer cli.Close()

	reply, err := cli.Call(req)
	if err != nil {
		return statusAndErrno(err, errnop)
	}
	sp := reply.(wire.SpReply)

	p := buffer.New(region(buf, buflen))
	fields, err := buffer.PackSp(p, sp.Login, sp.Passwd)
	if err != nil {
		return statusAndErrno(err, errnop)
	}

	result.sp_namp = charPtr(buf, fields.NameOff)
	result.sp_pwdp = charPtr(buf, fields.PasswdOff)

	return statusAndErrno(nil, errnop)
}

//export _nss_sectora_getgrnam_r
func _nss_sectora_getgrnam_r(name *C.char, result *C.struct_group, buf *C.char, buflen C.size_t, errnop *C.int) C.int {
	return getgr(wire.GrRequest{ByName: strArg(name)}, result, buf, buflen, errnop)
}

//export _nss_sectora_getgrgid_r
func _nss_sectora_getgrgid_r(gid C.gid_t, result *C.struct_group, buf *C.char, buflen C.size_t, errnop *C.int) C.int {
	g := uint64(gid)
	return getgr(wire.GrRequest{ByGID: &g}, result, buf, buflen, errnop)
}

//export _nss_sectora_setgrent
func _nss_sectora_setgrent() C.int { return setEntry(wire.GrRequest{Entry: entryKey(wire.EntrySet)}) }

//export _nss_sectora_endgrent
func _nss_sectora_endgrent() C.int { return setEntry(wire.GrRequest{Entry: entryKey(wire.EntryEnd)}) }

//export _nss_sectora_getgrent_r
func _nss_sectora_getgrent_r(result *C.struct_group, buf *C.char, buflen C.size_t, errnop *C.int) C.int {
	return getgr(wire.GrRequest{Entry: entryKey(wire.EntryGet)}, result, buf, buflen, errnop)
}

func getgr(req wire.GrRequest, result *C.struct_group, buf *C.char, buflen C.size_t, errnop *C.int) C.int {
	_, cli, err := openSession()
	if err != nil {
		return statusAndErrno(err, errnop)
	}
	defer cli.Close()

	reply, err := cli.Call(req)
	if err != nil {
		return statusAndErrno(err, errnop)
	}
	gr := reply.(wire.GrReply)

	logins := make([]string, len(gr.Sector.Members))
	for i, m := range gr.Sector.Members {
		logins[i] = m.Login
	}

	name := gr.Sector.Name
	if gr.Sector.Group != nil {
		name = *gr.Sector.Group
	}
	gid := gr.Sector.ID
	if gr.Sector.GID != nil {
		gid = *gr.Sector.GID
	}

	p := buffer.New(region(buf, buflen))
	fields, err := buffer.PackGr(p, name, uint32(gid), logins)
	if err != nil {
		return statusAndErrno(err, errnop)
	}

	// PackGr's member array holds offsets relative to the region, not
	// addresses: translate each slot into an absolute *C.char now that the
	// region's base address is known here.
	p.FixupPointerArray(fields.MembersOff, len(logins), func(relOffset int) uintptr {
		return uintptr(unsafe.Pointer(charPtr(buf, relOffset)))
	})

	result.gr_name = charPtr(buf, fields.NameOff)
	result.gr_passwd = charPtr(buf, fields.PasswdOff)
	result.gr_gid = C.gid_t(fields.GID)
	result.gr_mem = (**C.char)(unsafe.Pointer(charPtr(buf, fields.MembersOff)))

	return statusAndErrno(nil, errnop)
}

// setEntry issues a bare lifecycle request (set/end) that carries no record
// payload; it returns the same status StatusForError gives the record calls
// but writes no errno.
func setEntry(req wire.Request) C.int {
	_, cli, err := openSession()
	if err != nil {
		status, _ := nssclient.StatusForError(err)
		return C.int(status)
	}
	defer cli.Close()

	if _, err := cli.Call(req); err != nil {
		status, _ := nssclient.StatusForError(err)
		return C.int(status)
	}
	return C.int(nssclient.StatusSuccess)
}

func entryKey(op wire.EntryOp) *wire.EntryKey {
	return &wire.EntryKey{Op: op, PID: os.Getpid()}
}

func strArg(s *C.char) *string {
	v := C.GoString(s)
	return &v
}

func main() {}
