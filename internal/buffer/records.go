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

package buffer

// PwFields holds the offsets written into a packer's region for the string
// members of a struct passwd, plus the numeric fields the cgo shim copies
// directly (they need no buffer space).
type PwFields struct {
	NameOff, PasswdOff, GecosOff, HomeOff, ShellOff int
	UID, GID                                        uint32
}

// PackPw writes the string fields of a passwd record ("x" for the password
// placeholder, "" for gecos) and returns their offsets. uid/gid are returned
// unchanged for the caller to assign directly.
func PackPw(p *Packer, login, home, shell string, uid, gid uint32) (PwFields, error) {
	var f PwFields
	var err error

	if f.NameOff, err = p.WriteString(login); err != nil {
		return f, err
	}
	if f.PasswdOff, err = p.WriteString("x"); err != nil {
		return f, err
	}
	if f.GecosOff, err = p.WriteString(""); err != nil {
		return f, err
	}
	if f.HomeOff, err = p.WriteString(home); err != nil {
		return f, err
	}
	if f.ShellOff, err = p.WriteString(shell); err != nil {
		return f, err
	}
	f.UID, f.GID = uid, gid
	return f, nil
}

// SpFields holds the offsets for the string members of a struct spwd this
// repository cares about: the login name and the shadow password field.
type SpFields struct {
	NameOff, PasswdOff int
}

// PackSp writes the login and shadow-password-field strings.
func PackSp(p *Packer, login, passwd string) (SpFields, error) {
	var f SpFields
	var err error
	if f.NameOff, err = p.WriteString(login); err != nil {
		return f, err
	}
	if passwd == "" {
		passwd = "*"
	}
	if f.PasswdOff, err = p.WriteString(passwd); err != nil {
		return f, err
	}
	return f, nil
}

// GrFields holds the offsets for the string and pointer-array members of a
// struct group.
type GrFields struct {
	NameOff, PasswdOff, MembersOff int
	GID                            uint32
}

// PackGr writes the group name, a disabled password placeholder, and the
// NULL-terminated member-login pointer array.
func PackGr(p *Packer, name string, gid uint32, members []string) (GrFields, error) {
	var f GrFields
	var err error

	if f.NameOff, err = p.WriteString(name); err != nil {
		return f, err
	}
	if f.PasswdOff, err = p.WriteString("*"); err != nil {
		return f, err
	}
	if f.MembersOff, err = p.WritePointerArray(members); err != nil {
		return f, err
	}
	f.GID = gid
	return f, nil
}
